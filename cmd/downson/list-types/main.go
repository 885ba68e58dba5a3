package list_types

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/downson/pkg/config"
	"github.com/walteh/downson/pkg/settings"
)

type Handler struct {
	fs         afero.Fs
	stdout     io.Writer
	configFile string
	format     string // text, json
}

func NewListTypesCommand() *cobra.Command {
	me := &Handler{
		fs: afero.NewOsFs(),
	}

	cmd := &cobra.Command{
		Use:   "list-types",
		Short: "list the literal types a document may use",
	}

	cmd.Flags().String("config", "", "types and markdown options file (.hcl, .yaml)")
	cmd.Flags().String("format", "text", "output format: text, json")

	cmd.Args = cobra.NoArgs

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := settings.Bind(cmd)
		if err != nil {
			return err
		}

		me.configFile = v.GetString("config")
		me.format = v.GetString("format")
		me.stdout = cmd.OutOrStdout()

		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	cfg, err := config.LoadOrDefault(me.fs, me.configFile)
	if err != nil {
		return err
	}

	reg, err := cfg.Registry()
	if err != nil {
		return errors.Errorf("applying config types: %w", err)
	}

	types := reg.Types()

	switch me.format {
	case "", "text":
		for _, t := range types {
			if _, err := fmt.Fprintln(me.stdout, t); err != nil {
				return errors.Errorf("writing types: %w", err)
			}
		}
	case "json":
		if err := json.NewEncoder(me.stdout).Encode(types); err != nil {
			return errors.Errorf("encoding types: %w", err)
		}
	default:
		return errors.Errorf("unknown output format %q", me.format)
	}

	return nil
}
