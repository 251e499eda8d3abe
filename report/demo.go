package report

import (
	"context"
)

// Demo checks that the CLI is wired up. It runs no query.
type Demo struct{}

func (*Demo) Name() string   { return "demo" }
func (*Demo) Short() string  { return "a demo report that ensures everything is working" }
func (*Demo) Args() []string { return nil }

func (d *Demo) Run(_ context.Context, env *Env, args []string) error {
	if err := checkArgs(d, args); err != nil {
		return err
	}
	if err := env.Out.WriteHeader([]string{"message"}); err != nil {
		return err
	}
	if err := env.Out.WriteRow([]interface{}{"it worked!"}); err != nil {
		return err
	}
	return env.Out.Close()
}
