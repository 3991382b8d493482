package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRequirement = "requirement"
	KeyWheel       = "wheel"
	KeyPath        = "path"
	KeyURL         = "url"
	KeyMode        = "mode"
	KeyRunID       = "run_id"
	KeyOutcome     = "outcome"
	KeyProtocol    = "protocol"
	KeyDurationMS  = "duration_ms"
	KeySHA256      = "sha256"
	KeySize        = "size"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Requirement(name string) slog.Attr  { return slog.String(KeyRequirement, name) }
func Wheel(name string) slog.Attr        { return slog.String(KeyWheel, name) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr             { return slog.String(KeyURL, u) }
func Mode(m string) slog.Attr            { return slog.String(KeyMode, m) }
func RunID(id string) slog.Attr          { return slog.String(KeyRunID, id) }
func Outcome(o string) slog.Attr         { return slog.String(KeyOutcome, o) }
func Protocol(p string) slog.Attr        { return slog.String(KeyProtocol, p) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func SHA256(sum string) slog.Attr        { return slog.String(KeySHA256, sum) }
func Size(n int64) slog.Attr             { return slog.Int64(KeySize, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
