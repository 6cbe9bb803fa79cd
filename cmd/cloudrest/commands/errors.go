package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/cloudrest/pkg/gax"
)

// FormatError renders err for the terminal. Service errors are expanded
// from their classified details; nothing is re-parsed from the body.
func FormatError(err error) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Error: %v\n", err)

	var gaxErr *gax.Error
	if !errors.As(err, &gaxErr) || gaxErr.HTTP == nil {
		return b.String()
	}

	for _, detail := range gaxErr.HTTP.Details {
		writeDetail(&b, detail)
	}

	if delay, ok := gaxErr.HTTP.RetryDelay(); ok {
		fmt.Fprintf(&b, "  Retry after: %s\n", delay)
	}

	return b.String()
}

func writeDetail(b *strings.Builder, detail gax.Detail) {
	switch d := detail.(type) {
	case gax.ErrorInfo:
		fmt.Fprintf(b, "  Reason: %s (%s)\n", d.Reason, d.Domain)
	case gax.QuotaFailure:
		for _, v := range d.Violations {
			fmt.Fprintf(b, "  Quota exceeded: %s: %s\n", v.Subject, v.Description)
		}
	case gax.PreconditionFailure:
		for _, v := range d.Violations {
			fmt.Fprintf(b, "  Precondition failed: %s %s: %s\n", v.Type, v.Subject, v.Description)
		}
	case gax.BadRequest:
		for _, v := range d.FieldViolations {
			fmt.Fprintf(b, "  Invalid field %s: %s\n", v.Field, v.Description)
		}
	case gax.ResourceInfo:
		fmt.Fprintf(b, "  Resource: %s %s\n", d.ResourceType, d.ResourceName)
	case gax.Help:
		for _, link := range d.Links {
			fmt.Fprintf(b, "  Help: %s %s\n", link.Description, link.URL)
		}
	case gax.LocalizedMessage:
		fmt.Fprintf(b, "  %s\n", d.Message)
	case gax.RequestInfo:
		fmt.Fprintf(b, "  Request ID: %s\n", d.RequestID)
	case gax.RetryInfo, gax.DebugInfo:
	}
}
