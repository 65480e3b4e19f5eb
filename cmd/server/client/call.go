package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call [method] [json-payload]",
	Short: "Call any GameService method",
	Long: `Call invokes a GameService method by name with an optional JSON object
as the request, e.g.

  superpet-api client call Enhance '{"instanceId":"inst_1"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCall,
}

func runCall(_ *cobra.Command, args []string) error {
	var fields map[string]interface{}
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &fields); err != nil {
			return fmt.Errorf("payload must be a JSON object: %w", err)
		}
	}
	return invoke(args[0], fields)
}
