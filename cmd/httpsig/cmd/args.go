package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	httpsig "github.com/offblocks/httpsig-draft"
)

// ExactArgsWithUsage requires exactly n arguments and names them when the count is wrong.
func ExactArgsWithUsage(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return argsError(cmd, n, len(args))
		}
		return nil
	}
}

func argsError(cmd *cobra.Command, want, got int) error {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("requires %d argument(s), received %d\n\n", want, got))
	msg.WriteString(fmt.Sprintf("Usage: %s\n", cmd.UseLine()))
	msg.WriteString(fmt.Sprintf("\nRun '%s --help' for details.", cmd.CommandPath()))
	return fmt.Errorf("%s", msg.String())
}

// parseKeyUID checks that a key uid is a UUID, as issued by the developer portal.
func parseKeyUID(name, value string) (string, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return "", fmt.Errorf("%s must be a UUID e.g. \"aaaaaaaa-aaaa-4aaa-aaaa-aaaaaaaaaaaa\": %w", name, err)
	}
	return id.String(), nil
}

// parseRequestTarget splits "put /api/v2/..." into an uppercase method and the path.
func parseRequestTarget(target string) (string, string, error) {
	method, path, ok := strings.Cut(strings.TrimSpace(target), " ")
	path = strings.TrimSpace(path)
	if !ok || method == "" || !strings.HasPrefix(path, "/") {
		return "", "", fmt.Errorf("request target must be the method, a space, then the path e.g. \"put /api/v2/payments\", got %q", target)
	}
	return strings.ToUpper(method), path, nil
}

func algorithmNames() string {
	names := make([]string, 0, len(httpsig.SupportedAlgorithms()))
	for _, a := range httpsig.SupportedAlgorithms() {
		names = append(names, strings.ToUpper(strings.ReplaceAll(a.String(), "-", "_")))
	}
	return strings.Join(names, ", ")
}
