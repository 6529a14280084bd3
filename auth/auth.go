package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

func New(apiKeyToPartition map[string]string, next http.Handler) *Auth {
	return &Auth{
		Next:              next,
		APIKeyToPartition: apiKeyToPartition,
	}
}

// Auth maps the Authorization header to a partition name. Each API key gets
// its own partition, so callers only ever see their own result history.
type Auth struct {
	Next              http.Handler
	APIKeyToPartition map[string]string
}

// LoadFromFile reads a JSON map of API key to partition name. A usable key
// file never contains an empty key or an empty partition, since an empty key
// would grant access to requests with no Authorization header at all.
func LoadFromFile(name string) (apiKeyToPartition map[string]string, err error) {
	contents, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read key file %s: %w", name, err)
	}
	m := make(map[string]string)
	if err = json.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("auth: failed to parse key file %s: %w", name, err)
	}
	for key, partition := range m {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("auth: key file %s contains an empty API key", name)
		}
		if strings.TrimSpace(partition) == "" {
			return nil, fmt.Errorf("auth: key file %s has no partition for an API key", name)
		}
	}
	return m, nil
}

type partitionContextKey int

const partitionKey partitionContextKey = 0

func GetPartition(r *http.Request) (partition string, ok bool) {
	partition, ok = r.Context().Value(partitionKey).(string)
	return
}

func (a *Auth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	partition, ok := a.APIKeyToPartition[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	r = r.WithContext(context.WithValue(r.Context(), partitionKey, partition))
	a.Next.ServeHTTP(w, r)
}
