package db

import (
	"context"
	"time"

	"github.com/rqlite/gorqlite"
)

func New(conn *gorqlite.Connection) *Queries {
	return &Queries{
		conn: conn,
	}
}

type Queries struct {
	conn *gorqlite.Connection
}

// Result is one completed submission: a question answered or an article
// summarized. Input holds the question or URL, Output the generated text.
type Result struct {
	ID        string
	Partition string
	Kind      string
	Input     string
	Output    string
	CreatedAt time.Time
}

func (q *Queries) ResultPut(ctx context.Context, r Result) (err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     `insert into result (id, partition, kind, input, output, created_at) values (?, ?, ?, ?, ?, ?)`,
		Arguments: []any{r.ID, r.Partition, r.Kind, r.Input, r.Output, r.CreatedAt},
	}
	_, err = q.conn.WriteOneParameterizedContext(ctx, stmt)
	return err
}

type ResultsRecentArgs struct {
	Partition string
	Limit     int
}

func (q *Queries) ResultsRecent(ctx context.Context, args ResultsRecentArgs) (results []Result, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     `select id, partition, kind, input, output, created_at from result where partition = ? order by created_at desc limit ?`,
		Arguments: []any{args.Partition, args.Limit},
	}
	result, err := q.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	for result.Next() {
		var r Result
		if err = result.Scan(&r.ID, &r.Partition, &r.Kind, &r.Input, &r.Output, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (q *Queries) ResultDelete(ctx context.Context, partition, id string) (err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     `delete from result where partition = ? and id = ?`,
		Arguments: []any{partition, id},
	}
	_, err = q.conn.WriteOneParameterizedContext(ctx, stmt)
	return err
}
