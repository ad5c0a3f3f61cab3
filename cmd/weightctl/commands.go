package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	weightapp "weighthub/application/weight"
	"weighthub/pkg/client"

	"github.com/urfave/cli"
)

var weightFlags = []cli.Flag{
	cli.StringFlag{Name: "name", Usage: "weight name"},
	cli.StringFlag{Name: "local-path", Usage: "path of the weight file on the server host"},
	cli.StringFlag{Name: "online-url", Usage: "download url of the weight file"},
	cli.IntFlag{Name: "enable", Value: 1, Usage: "1 enabled, 0 disabled"},
}

var idFlag = cli.Int64Flag{Name: "id", Usage: "weight id"}

func newCreateCommand() cli.Command {
	return cli.Command{
		Name:   "create",
		Usage:  "register a weight",
		Flags:  weightFlags,
		Action: func(c *cli.Context) error { return create(c, c.App.Writer) },
	}
}

func newUpdateCommand() cli.Command {
	return cli.Command{
		Name:   "update",
		Usage:  "replace every field of a weight",
		Flags:  append([]cli.Flag{idFlag}, weightFlags...),
		Action: func(c *cli.Context) error { return update(c, c.App.Writer) },
	}
}

func newGetCommand() cli.Command {
	return cli.Command{
		Name:   "get",
		Usage:  "show one weight",
		Flags:  []cli.Flag{idFlag},
		Action: func(c *cli.Context) error { return get(c, c.App.Writer) },
	}
}

func newListCommand() cli.Command {
	return cli.Command{
		Name:  "list",
		Usage: "list weights page by page",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "page", Value: 1, Usage: "page number, starting at 1"},
			cli.IntFlag{Name: "size", Value: 10, Usage: "page size"},
			cli.StringFlag{Name: "weight", Usage: "case-insensitive name filter"},
			cli.IntFlag{Name: "enable", Usage: "only weights with this flag, 0 or 1"},
		},
		Action: func(c *cli.Context) error { return list(c, c.App.Writer) },
	}
}

func newDeleteCommand() cli.Command {
	return cli.Command{
		Name:   "delete",
		Usage:  "delete a weight",
		Flags:  []cli.Flag{idFlag},
		Action: func(c *cli.Context) error { return remove(c, c.App.Writer) },
	}
}

func newResolveCommand() cli.Command {
	return cli.Command{
		Name:   "resolve",
		Usage:  "locate the weight file on the server, downloading it when needed",
		Flags:  []cli.Flag{idFlag},
		Action: func(c *cli.Context) error { return resolve(c, c.App.Writer) },
	}
}

func newClient(c *cli.Context) (*client.Client, error) {
	var opts []client.Option
	if timeout := c.GlobalDuration("timeout"); timeout > 0 {
		opts = append(opts, client.WithHTTPClient(&http.Client{Timeout: timeout}))
	}
	return client.New(c.GlobalString("server"), opts...)
}

func requireID(c *cli.Context) (int64, error) {
	id := c.Int64("id")
	if id <= 0 {
		return 0, fmt.Errorf("--id is required and must be positive")
	}
	return id, nil
}

func create(c *cli.Context, out io.Writer) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	id, err := api.Create(context.Background(), weightapp.CreateWeightRequest{
		Name:      c.String("name"),
		LocalPath: c.String("local-path"),
		OnlineURL: c.String("online-url"),
		Enable:    c.Int("enable"),
	})
	if err != nil {
		return err
	}
	return printJSON(out, map[string]any{"id": id, "message": "created"})
}

// update 是全量替换，--enable 必须显式给出，否则默认值会覆盖原状态
func update(c *cli.Context, out io.Writer) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	if !c.IsSet("enable") {
		return fmt.Errorf("--enable is required for update")
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}
	err = api.Update(context.Background(), weightapp.UpdateWeightRequest{
		ID:        id,
		Name:      c.String("name"),
		LocalPath: c.String("local-path"),
		OnlineURL: c.String("online-url"),
		Enable:    c.Int("enable"),
	})
	if err != nil {
		return err
	}
	return printJSON(out, map[string]any{"id": id, "message": "updated"})
}

func get(c *cli.Context, out io.Writer) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}
	record, err := api.Get(context.Background(), id)
	if err != nil {
		return err
	}
	return printJSON(out, record)
}

func list(c *cli.Context, out io.Writer) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}
	req := weightapp.ListWeightRequest{
		CurrentPage: c.Int("page"),
		Size:        c.Int("size"),
	}
	if c.IsSet("weight") {
		name := c.String("weight")
		req.Weight = &name
	}
	if c.IsSet("enable") {
		enable := c.Int("enable")
		req.Enable = &enable
	}

	result, err := api.List(context.Background(), req)
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

func remove(c *cli.Context, out io.Writer) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}
	if err := api.Delete(context.Background(), id); err != nil {
		return err
	}
	return printJSON(out, map[string]any{"id": id, "message": "deleted"})
}

func resolve(c *cli.Context, out io.Writer) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	api, err := newClient(c)
	if err != nil {
		return err
	}
	result, err := api.Resolve(context.Background(), id)
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
