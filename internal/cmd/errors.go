package cmd

import (
	"net"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/gateway"
	"github.com/hospital-is/hisctl/internal/metrics"
)

// uncodedError labels failures that carry no HISError code.
const uncodedError = "uncoded"

// isTransport reports failures to reach the backend at all.
func isTransport(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr)
}

// requestError maps a gateway failure to a coded error. A 401 has already
// cleared the session by the time it gets here.
func requestError(baseURL string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gateway.ErrUnauthorized):
		return errors.NewSessionExpiredError(err)
	case isTransport(err):
		return errors.NewAPIUnreachableError(baseURL, err)
	}

	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return errors.Wrap(errors.ErrCodeAPIRequestFailed, "request rejected by the hospital API", err)
	}
	return err
}

// recordCommandError counts a failed command by error code.
func recordCommandError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	name := rootCmd.Name()
	if cmd != nil {
		name = cmd.Name()
	}
	code := string(errors.CodeOf(err))
	if code == "" {
		code = uncodedError
	}
	metrics.GetDefault().RecordError(code, name)
}
