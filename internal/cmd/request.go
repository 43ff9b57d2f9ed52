package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:   "request <METHOD> <path>",
	Short: "Send a raw request to the hospital API with this terminal's session",
	Long: `Send one request through the same gateway the console uses. The session
token is attached, and a 401 response ends the session exactly as it does in
the console.`,
	Example: `  hisctl request GET /lab/requests
  hisctl request POST /receptionist/appointments --data '{"patientId":"p1","doctorId":"d1"}'`,
	Args: cobra.ExactArgs(2),
	RunE: runRequest,
}

var (
	requestData    string
	requestInclude bool
)

var requestMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

func init() {
	requestCmd.Flags().StringVarP(&requestData, "data", "d", "", "JSON request body")
	requestCmd.Flags().BoolVarP(&requestInclude, "include", "i", false, "print the response status line")

	rootCmd.AddCommand(requestCmd)
}

func runRequest(cmd *cobra.Command, args []string) error {
	method := strings.ToUpper(args[0])
	if !requestMethods[method] {
		return fmt.Errorf("invalid argument %q: method must be one of GET, POST, PUT, PATCH, DELETE", args[0])
	}
	path := args[1]
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body any
	if requestData != "" {
		if !json.Valid([]byte(requestData)) {
			return fmt.Errorf("invalid argument %q: --data must be JSON", requestData)
		}
		body = []byte(requestData)
	}

	a, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := withTimeout(cmd.Context(), a.cfg)
	defer cancel()

	if err := a.initialize(ctx); err != nil {
		return err
	}

	resp, err := a.gateway.Do(ctx, method, path, body)
	if err != nil {
		return requestError(a.gateway.BaseURL(), err)
	}

	out := cmd.OutOrStdout()
	if requestInclude {
		fmt.Fprintf(out, "HTTP %d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if len(resp.Body) == 0 {
		return nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Body, "", "  "); err != nil {
		fmt.Fprintln(out, string(resp.Body))
		return nil
	}
	fmt.Fprintln(out, pretty.String())
	return nil
}
