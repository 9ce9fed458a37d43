package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/log"
	"github.com/ardnew/formkit/pkg"
)

// Query searches a document for nodes with a given name and prints them.
type Query struct {
	MaxLevel int    `default:"0"      help:"Deepest level searched (0 for unlimited)"          short:"M"`
	MinLevel int    `default:"1"      help:"Shallowest level searched"                         short:"m"`
	ByChild  bool   `                 help:"Print the parents of matching nodes"               short:"c"`
	All      bool   `                 help:"Print every match rather than the shallowest ones" short:"a"`
	Strict   bool   `                 help:"Fail when nothing matches"                         short:"x"`
	Output   string `default:"native" help:"Output format"                                     short:"o" enum:"native,json,yaml,tree"`

	Name   string `arg:"" help:"Node name to search for (legacy aliases apply)"             name:"name"`
	Source string `arg:"" help:"Source input file, URL or '-' for default stdin." default:"-" name:"source"`
}

// Run executes the query command.
func (q *Query) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	root, err := load(ctx, q.Source)
	if err != nil {
		return pkg.WrapError(err).
			With(slog.String("query", q.Name))
	}

	res, err := q.search(root)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "query",
		slog.String("name", q.Name),
		slog.Int("matches", res.Len()),
	)

	return q.write(ctx, res)
}

// search returns the query results wrapper for root.
func (q *Query) search(root *conf.Node) (*conf.Node, error) {
	var res *conf.Node

	switch {
	case q.All:
		res = root.QueryAll(q.Name, q.MaxLevel, q.ByChild)

	case q.ByChild:
		res = root.QueryByChild(q.Name, q.levels()...)

	default:
		res = root.Query(q.Name, q.levels()...)
	}

	if q.Strict && res.Len() == 0 {
		return nil, pkg.ErrNodeNotFound.
			With(slog.String("name", q.Name)).
			Wrapf("%q", q.Name)
	}

	return res, nil
}

func (q *Query) levels() []conf.QueryOption {
	opts := []conf.QueryOption{conf.MinLevel(q.MinLevel)}
	if q.MaxLevel > 0 {
		opts = append(opts, conf.MaxLevel(q.MaxLevel))
	}

	return opts
}

// write prints the matches of res. JSON and YAML render the matches as a
// list.
func (q *Query) write(ctx context.Context, res *conf.Node) error {
	matches := make([]*conf.Node, 0, res.Len())
	for _, n := range res.All() {
		matches = append(matches, n)
	}

	list := conf.NewNode("", matches...)

	switch q.Output {
	case "json":
		if len(matches) == 0 {
			_, err := fmt.Fprintln(stdout, "[]")

			return err
		}

		if err := list.FormatJSON(ctx, stdout, 2); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		return nil

	case "yaml":
		if len(matches) == 0 {
			_, err := fmt.Fprintln(stdout, "[]")

			return err
		}

		if err := list.FormatYAML(ctx, stdout, 2); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		return nil

	case "tree":
		for _, n := range matches {
			if err := n.Tree(stdout); err != nil {
				return err
			}
		}

		return nil

	default:
		if len(matches) == 0 {
			return nil
		}

		_, err := fmt.Fprintln(stdout, list.Serialize(conf.ChildrenOnly()))

		return err
	}
}
