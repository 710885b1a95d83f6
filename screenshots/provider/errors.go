package provider

import (
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"

	"github.com/theimaginaryfoundation/store-assets/screenshots"
	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
)

// classify wraps err in an OracleError carrying the failure kind.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var oe *screenshots.OracleError
	if errors.As(err, &oe) {
		return err
	}
	return &screenshots.OracleError{Op: op, Kind: errorKind(err), Err: err}
}

func errorKind(err error) string {
	if status := statusCode(err); status != 0 {
		switch {
		case status == 429:
			return screenshots.KindRateLimit
		case status >= 500:
			return screenshots.KindServer
		case status >= 400:
			return screenshots.KindRequest
		}
	}
	switch {
	case isRateLimitError(err):
		return screenshots.KindRateLimit
	case isServerError(err):
		return screenshots.KindServer
	}
	return screenshots.KindOther
}

func statusCode(err error) int {
	var aerr *anthropic.Error
	if errors.As(err, &aerr) {
		return aerr.StatusCode
	}
	var oerr *openai.Error
	if errors.As(err, &oerr) {
		return oerr.StatusCode
	}
	return 0
}

func isRateLimitError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "529") ||
		strings.Contains(errStr, "overloaded") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

func decodeError(op string, err error) error {
	return &screenshots.OracleError{Op: op, Kind: screenshots.KindDecode, Err: err}
}

type rankingEnvelope struct {
	Screenshots []screenshots.RankedScreenshot `json:"screenshots" jsonschema:"required"`
}

// decodeRanking accepts either a bare JSON array of records or a {"screenshots": [...]} object.
func decodeRanking(text string) ([]screenshots.RankedScreenshot, error) {
	var list []screenshots.RankedScreenshot
	arrErr := fileutils.DecodeModelJSON(text, &list)
	if arrErr == nil {
		return list, nil
	}
	var env rankingEnvelope
	if err := fileutils.DecodeModelJSON(text, &env); err == nil && len(env.Screenshots) > 0 {
		return env.Screenshots, nil
	}
	return nil, arrErr
}
