package main

import (
	"context"
	"fmt"

	"github.com/a-h/docqa"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(docqa.Version)
	return nil
}
