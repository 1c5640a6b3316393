package gcp

import (
	"google.golang.org/api/option"
)

// ClientOptions builds the shared option set for Google clients. The
// credentials file comes from the process config; an empty value defers to
// application default credentials.
func ClientOptions(credentialsFile string) []option.ClientOption {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return opts
}
