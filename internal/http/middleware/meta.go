package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"dataroom/internal/model"
)

// CountryLocalKey stores the client country resolved by ClientCountry.
const CountryLocalKey = "client_country"

// ClientCountry reads the ISO 3166-1 alpha-2 country set by the edge proxy in header.
// The header is honoured only when the connecting peer is a trusted proxy; an empty header
// name disables resolution so country allow-lists refuse every request.
func ClientCountry(header string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if header == "" || !c.IsProxyTrusted() {
			return c.Next()
		}
		country := strings.ToUpper(strings.TrimSpace(c.Get(header)))
		// XX and T1 are the proxy's unknown and Tor markers.
		if len(country) == 2 && country != "XX" && country != "T1" {
			c.Locals(CountryLocalKey, country)
		}
		return c.Next()
	}
}

// RequestMeta collects the request context that restrictions and audit events are evaluated against.
// Client IP honours the proxy header only when fiber is configured with trusted proxies.
func RequestMeta(c *fiber.Ctx) model.RequestMeta {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	country, _ := c.Locals(CountryLocalKey).(string)
	return model.RequestMeta{
		IP:        c.IP(),
		Country:   country,
		UserAgent: c.Get(fiber.HeaderUserAgent),
		RequestID: rid,
	}
}
