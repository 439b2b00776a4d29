package canonical

import (
	"strings"

	"github.com/runvoy/runadapt/internal/constants"
)

// ExtractClientAddress resolves the client IP from a normalised header set.
// Precedence: the platform's own source IP, the first x-forwarded-for hop,
// x-real-ip, then "0.0.0.0".
func ExtractClientAddress(h Header, native string) string {
	if ip := strings.TrimSpace(native); ip != "" {
		return ip
	}
	if ip := firstHop(h.Get(constants.HeaderForwardedFor)); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(h.Get(constants.HeaderRealIP)); ip != "" {
		return ip
	}
	return constants.UnknownRemoteAddr
}

// ExtractClientAddressRaw is ExtractClientAddress over a header map that has
// not been normalised yet. Upstream proxies send either spelling, and the
// capitalised one is checked first.
func ExtractClientAddressRaw(raw map[string]string, native string) string {
	if ip := strings.TrimSpace(native); ip != "" {
		return ip
	}
	for _, k := range []string{"X-Forwarded-For", constants.HeaderForwardedFor} {
		if ip := firstHop(raw[k]); ip != "" {
			return ip
		}
	}
	// Any other spelling is resolved through the normalised form.
	return ExtractClientAddress(NormalizeHeaders(raw), "")
}

func firstHop(forwarded string) string {
	first, _, _ := strings.Cut(forwarded, ",")
	return strings.TrimSpace(first)
}
