package commands

import (
	"github.com/spf13/cobra"

	"github.com/dashwatch/internal/api/client"
)

// APIURLFlag is the persistent root flag holding the server address.
const APIURLFlag = "api-url"

func newClient(cmd *cobra.Command) *client.Client {
	baseURL, _ := cmd.Flags().GetString(APIURLFlag)
	return client.NewClient(baseURL)
}
