package common

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wbpulse/wbpulse/pkg/tracking"
)

func generateSessionId() uint32 {
	return uint32(time.Now().UnixNano())
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sessionId uint32) {
	http.SetCookie(w, &http.Cookie{
		Name:     "sid",
		Value:    fmt.Sprintf("%d", sessionId),
		Domain:   strings.TrimPrefix(r.Host, "."),
		SameSite: http.SameSiteNoneMode,
		HttpOnly: true,
		MaxAge:   2592000,
		Path:     "/",
	})
}

// HandleSessionCookie reads or creates the session id cookie, tracking
// new sessions when a tracker is wired.
func HandleSessionCookie(trk tracking.Tracking, w http.ResponseWriter, r *http.Request) uint32 {
	sessionId := generateSessionId()
	c, err := r.Cookie("sid")
	if err != nil {
		if trk != nil {
			go trk.TrackSession(sessionId, r)
		}
		setSessionCookie(w, r, sessionId)
		return sessionId
	}
	parsed, err := strconv.ParseUint(c.Value, 10, 32)
	if err != nil {
		setSessionCookie(w, r, sessionId)
		return sessionId
	}
	return uint32(parsed)
}
