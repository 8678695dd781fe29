package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_rules/internal/app"
	"hotel_rules/internal/domain"
)

type Handlers struct{ Q *app.AvailabilityService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/room-types/{id}/booking-check", h.bookingCheck)
	s.mux.Get("/v1/room-types/{id}/unavailable-rooms", h.unavailableRooms)
	s.mux.Get("/v1/room-types/{id}/blocked-rooms-count", h.blockedRoomsCount)
	s.mux.Get("/v1/room-types/{id}/stay-in-rules", h.stayInRules)
	s.mux.Get("/v1/room-types/{id}/stay-in-comments", h.stayInComments)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func roomTypeID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

func parseDate(s string) (time.Time, bool) {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	return d, err == nil
}

func parseStay(r *http.Request) (checkIn, checkOut time.Time, ok bool) {
	checkIn, inOK := parseDate(r.URL.Query().Get("check_in"))
	checkOut, outOK := parseDate(r.URL.Query().Get("check_out"))
	return checkIn, checkOut, inOK && outOK && checkIn.Before(checkOut)
}

func ignoreRules(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("ignore_rules"))
	return v
}

func (h *Handlers) bookingCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := roomTypeID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	checkIn, checkOut, ok := parseStay(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid stay",
			"check_in and check_out must be YYYY-MM-DD dates with check_in before check_out")
		return
	}

	resp, err := h.Q.CheckBooking(r.Context(), id, checkIn, checkOut, ignoreRules(r))
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Check failed", err.Error())
		return
	}

	etag, body := calcETagAndBody(resp)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write bookingCheck body")
	}
}

func (h *Handlers) unavailableRooms(w http.ResponseWriter, r *http.Request) {
	id, ok := roomTypeID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	checkIn, checkOut, ok := parseStay(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid stay",
			"check_in and check_out must be YYYY-MM-DD dates with check_in before check_out")
		return
	}

	ids, err := h.Q.UnavailableRooms(r.Context(), id, checkIn, checkOut, ignoreRules(r))
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Lookup failed", err.Error())
		return
	}
	if ids == nil {
		ids = []int{}
	}
	writeJSON(w, struct {
		RoomTypeID int   `json:"room_type_id"`
		RoomIDs    []int `json:"unavailable_room_ids"`
	}{id, ids})
}

func (h *Handlers) blockedRoomsCount(w http.ResponseWriter, r *http.Request) {
	id, ok := roomTypeID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	date, ok := parseDate(r.URL.Query().Get("date"))
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid date", "date must be YYYY-MM-DD")
		return
	}

	count := h.Q.BlockedRoomsCount(id, date, ignoreRules(r))
	writeJSON(w, struct {
		RoomTypeID int    `json:"room_type_id"`
		Date       string `json:"date"`
		Blocked    int    `json:"blocked_rooms_count"`
	}{id, date.Format("2006-01-02"), count})
}

func (h *Handlers) stayInRules(w http.ResponseWriter, r *http.Request) {
	id, ok := roomTypeID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	roomID := 0
	if rs := r.URL.Query().Get("room_id"); rs != "" {
		v, err := strconv.Atoi(rs)
		if err != nil || v < 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid room_id", "room_id must be a non-negative number")
			return
		}
		roomID = v
	}

	out := h.Q.StayInRulesForExport(id, roomID)
	if out == nil {
		out = []domain.StayInRuleExport{}
	}
	writeJSON(w, out)
}

func (h *Handlers) stayInComments(w http.ResponseWriter, r *http.Request) {
	id, ok := roomTypeID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}

	var roomIDs []int
	if rs := r.URL.Query().Get("rooms"); rs != "" {
		for _, part := range strings.Split(rs, ",") {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || v <= 0 {
				writeProblem(w, http.StatusBadRequest, "Invalid rooms", "rooms must be a comma-separated list of room ids")
				return
			}
			roomIDs = append(roomIDs, v)
		}
	}

	var period *domain.DatePeriod
	fromS, toS := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if fromS != "" || toS != "" {
		from, fromOK := parseDate(fromS)
		to, toOK := parseDate(toS)
		if !fromOK || !toOK || to.Before(from) {
			writeProblem(w, http.StatusBadRequest, "Invalid period", "from and to must be YYYY-MM-DD dates with from <= to")
			return
		}
		period = &domain.DatePeriod{From: from, To: to}
	}

	writeJSON(w, h.Q.StayInComments(id, roomIDs, period))
}
