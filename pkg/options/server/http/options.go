// Package http provides HTTP server configuration options.
package http

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/ariel1441/ai-rag-project-sub000/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options configures the HTTP listener.
type Options struct {
	// Addr is the bind address, host:port.
	Addr string `json:"addr" mapstructure:"addr"`

	// ReadTimeout bounds reading an entire request including the body.
	ReadTimeout time.Duration `json:"read-timeout" mapstructure:"read-timeout"`

	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`

	// IdleTimeout is how long keep-alive connections wait for the next
	// request before closing.
	IdleTimeout time.Duration `json:"idle-timeout" mapstructure:"idle-timeout"`

	// CORSAllowedOrigins enables the CORS middleware for the listed
	// origins ("*" allows any). Empty leaves CORS off.
	CORSAllowedOrigins []string `json:"cors-allowed-origins" mapstructure:"cors-allowed-origins"`

	// RequestTimeout puts a deadline on each request context. Zero
	// leaves requests unbounded by the middleware.
	RequestTimeout time.Duration `json:"request-timeout" mapstructure:"request-timeout"`
}

// NewOptions returns HTTP options with defaults.
func NewOptions() *Options {
	return &Options{
		Addr:         ":8100",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// AddFlags adds flags for HTTP options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Addr, p+"http.addr", o.Addr, "HTTP server bind address and port.")
	fs.DurationVar(&o.ReadTimeout, p+"http.read-timeout", o.ReadTimeout, "Timeout for reading an entire request.")
	fs.DurationVar(&o.WriteTimeout, p+"http.write-timeout", o.WriteTimeout, "Timeout for writing the response.")
	fs.DurationVar(&o.IdleTimeout, p+"http.idle-timeout", o.IdleTimeout, "Keep-alive idle timeout.")
	fs.StringSliceVar(&o.CORSAllowedOrigins, p+"http.cors-allowed-origins", o.CORSAllowedOrigins, "Origins allowed by CORS; empty disables CORS handling.")
	fs.DurationVar(&o.RequestTimeout, p+"http.request-timeout", o.RequestTimeout, "Per-request context deadline; 0 disables it.")
}

// Validate validates the HTTP options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Addr == "" {
		errs = append(errs, fmt.Errorf("http.addr cannot be empty"))
	}
	if o.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http.read-timeout must be positive"))
	}
	if o.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http.write-timeout must be positive"))
	}
	if o.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("http.request-timeout cannot be negative"))
	}
	return errs
}

// Complete fills derived defaults. Nothing to derive currently.
func (o *Options) Complete() error {
	return nil
}
