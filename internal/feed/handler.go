package feed

import (
	"net/url"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler upgrades GET /feed to a websocket subscription. allowedOrigins
// are full origins (http://host:port); their hosts become accept patterns.
func Handler(hub *Hub, allowedOrigins []string) gin.HandlerFunc {
	patterns := originPatterns(allowedOrigins)

	return func(c *gin.Context) {
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns: patterns,
		})
		if err != nil {
			hub.logger.Warn("Feed upgrade failed", zap.String("origin", c.GetHeader("Origin")), zap.Error(err))
			return
		}
		defer conn.CloseNow()

		newSubscriber(hub, conn).serve(c.Request.Context())
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
