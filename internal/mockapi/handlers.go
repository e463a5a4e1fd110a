package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/wselearn/wse/internal/api"
	"github.com/wselearn/wse/internal/exercise"
)

// periodAge maps a period option to how far back it reaches.
var periodAge = map[string]time.Duration{
	"day_ago":          24 * time.Hour,
	"week_ago":         7 * 24 * time.Hour,
	"two_weeks_ago":    14 * 24 * time.Hour,
	"three_weeks_ago":  21 * 24 * time.Hour,
	"month_ago":        30 * 24 * time.Hour,
	"three_months_ago": 90 * 24 * time.Hour,
	"six_months_ago":   180 * 24 * time.Hour,
	"year_ago":         365 * 24 * time.Hour,
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	s.mu.Lock()
	hash, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Unable to log in with provided credentials."},
		})
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = req.Username
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"auth_token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Token ")
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExercise(w http.ResponseWriter, r *http.Request, c *collection) {
	var params exercise.Params
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeDetail(w, http.StatusBadRequest, "Malformed request body.")
			return
		}
	}
	if err := params.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	matches := s.filter(c, params)
	if len(matches) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	it := matches[s.pick(len(matches))]
	writeJSON(w, http.StatusOK, c.taskJSON(it))
}

// filter returns the items matching the lookup params.
func (s *Server) filter(c *collection, p exercise.Params) []*Item {
	now := s.now()
	var out []*Item
	for _, it := range c.items {
		if p.Category != "" && it.Category != p.Category {
			continue
		}
		if p.Progress != "" && it.Stage != p.Progress {
			continue
		}
		if age, ok := periodAge[p.PeriodStart]; ok && it.CreatedAt.Before(now.Add(-age)) {
			continue
		}
		if age, ok := periodAge[p.PeriodEnd]; ok && it.CreatedAt.After(now.Add(-age)) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request, c *collection) {
	var req struct {
		Action string          `json:"action"`
		ItemID json.RawMessage `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}
	id, err := parseID(req.ItemID)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	it := c.find(id)
	if it == nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	switch exercise.Action(req.Action) {
	case exercise.ActionKnow:
		i := slices.Index(exercise.ProgressStages, it.Stage)
		if i < len(exercise.ProgressStages)-1 {
			it.Stage = exercise.ProgressStages[i+1]
		}
	case exercise.ActionNotKnow:
		it.Stage = exercise.ProgressStages[0]
	default:
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Unknown action %q.", req.Action))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": it.ID, "progress": it.Stage})
}

// parseID accepts a JSON number or a numeric string.
func parseID(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if n, err := strconv.Atoi(str); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("invalid item_id %s", string(raw))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, c *collection) {
	page, err := queryInt(r.URL.Query(), "page", 1)
	if err != nil || page < 1 {
		writeDetail(w, http.StatusNotFound, "Invalid page.")
		return
	}
	size, err := queryInt(r.URL.Query(), "page_size", DefaultPageSize)
	if err != nil || size < 1 {
		size = DefaultPageSize
	}

	total := len(c.items)
	start := (page - 1) * size
	if start >= total && !(page == 1 && total == 0) {
		writeDetail(w, http.StatusNotFound, "Invalid page.")
		return
	}
	end := min(start+size, total)

	results := make([]api.Item, 0, end-start)
	for _, it := range c.items[start:end] {
		results = append(results, c.listJSON(it))
	}

	body := map[string]any{
		"count":    total,
		"next":     nil,
		"previous": nil,
		"results":  results,
	}
	if end < total {
		body["next"] = pageURL(r, page+1, size)
	}
	if page > 1 {
		body["previous"] = pageURL(r, page-1, size)
	}
	writeJSON(w, http.StatusOK, body)
}

func pageURL(r *http.Request, page, size int) string {
	u := url.URL{Path: r.URL.Path}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return u.String()
}

func queryInt(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, c *collection) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	fields := make(map[string]string)
	problems := make(map[string][]string)
	allowed := append(slices.Clone(c.variant.ListColumns), c.variant.ExtraKeys...)
	for _, k := range allowed {
		if v, ok := body[k].(string); ok && strings.TrimSpace(v) != "" {
			fields[k] = strings.TrimSpace(v)
		}
	}
	for _, k := range c.variant.ListColumns {
		if fields[k] == "" {
			problems[k] = []string{"This field may not be blank."}
		}
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, problems)
		return
	}

	category, _ := body["category"].(string)
	it := c.add(fields, strings.TrimSpace(category), s.now())
	writeJSON(w, http.StatusCreated, c.listJSON(it))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, c *collection) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || !c.remove(id) {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
