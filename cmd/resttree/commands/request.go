package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/resttree-io/resttree/pkg/resttree"
)

// NewRequestCommands returns one subcommand per HTTP verb, each taking
// a route relative to the configured base URL.
func NewRequestCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(resttree.Methods()))

	for _, method := range resttree.Methods() {
		cmds = append(cmds, newVerbCommand(method))
	}

	return cmds
}

func newVerbCommand(method resttree.Method) *cobra.Command {
	verb := strings.ToLower(string(method))

	cmd := &cobra.Command{
		Use:   verb + " ROUTE",
		Short: fmt.Sprintf("Send a %s request to a route under the base URL", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, method, args[0])
		},
	}

	cmd.Flags().StringArrayP("param", "p", nil, "query parameter (key=value, repeatable)")
	cmd.Flags().StringArrayP("header", "H", nil, "request header (key=value, repeatable)")
	cmd.Flags().StringP("data", "d", "", "request body (use @file to read from a file)")

	return cmd
}

func runRequest(cmd *cobra.Command, method resttree.Method, route string) error {
	client, err := buildClient()
	if err != nil {
		return err
	}

	opts, err := requestOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Request(cmd.Context(), method, route, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", resp.StatusCode)

	if len(resp.Body) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), renderBody(resp.Body))
	}

	return nil
}

func buildClient() (*resttree.Client, error) {
	baseURL := viper.GetString("base_url")
	if baseURL == "" {
		return nil, resttree.ErrBaseURLRequired
	}

	opts := []resttree.ClientOption{}

	switch {
	case viper.GetString("token") != "":
		opts = append(opts, resttree.WithAuth(resttree.TokenAuth{Token: viper.GetString("token")}))
	case viper.GetString("username") != "":
		opts = append(opts, resttree.WithAuth(resttree.BasicAuth{
			Username: viper.GetString("username"),
			Password: viper.GetString("password"),
		}))
	}

	if viper.GetBool("verbose") {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		opts = append(opts, resttree.WithLogger(resttree.NewZerologLogger(logger)))
	}

	return resttree.New(baseURL, opts...)
}

func requestOptionsFromFlags(cmd *cobra.Command) ([]resttree.RequestOption, error) {
	var opts []resttree.RequestOption

	params, _ := cmd.Flags().GetStringArray("param")
	for _, pair := range params {
		key, value, err := splitPair(pair)
		if err != nil {
			return nil, err
		}

		opts = append(opts, resttree.WithParam(key, value))
	}

	headers, _ := cmd.Flags().GetStringArray("header")
	for _, pair := range headers {
		key, value, err := splitPair(pair)
		if err != nil {
			return nil, err
		}

		opts = append(opts, resttree.WithHeader(key, value))
	}

	data, _ := cmd.Flags().GetString("data")
	if data != "" {
		body := []byte(data)

		if strings.HasPrefix(data, "@") {
			contents, err := os.ReadFile(strings.TrimPrefix(data, "@"))
			if err != nil {
				return nil, fmt.Errorf("reading body file: %w", err)
			}

			body = contents
		}

		opts = append(opts, resttree.WithBody(body))
	}

	return opts, nil
}

func splitPair(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid key=value pair: %q", pair)
	}

	return key, value, nil
}

// renderBody pretty-prints JSON payloads and passes everything else
// through untouched.
func renderBody(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}

	return buf.String()
}
