package wiki

import "strings"

// apiResponse is the subset of an action=query response (formatversion=2)
// the client reads.
type apiResponse struct {
	BatchComplete bool              `json:"batchcomplete"`
	Continue      map[string]string `json:"continue"`
	Query         *apiQuery         `json:"query"`
	Error         *apiError         `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type apiQuery struct {
	Normalized []titleMapping `json:"normalized"`
	Redirects  []titleMapping `json:"redirects"`
	Pages      []apiPage      `json:"pages"`
}

type titleMapping struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type apiPage struct {
	PageID  int       `json:"pageid"`
	NS      int       `json:"ns"`
	Title   string    `json:"title"`
	Missing bool      `json:"missing"`
	Invalid bool      `json:"invalid"`
	Links   []apiLink `json:"links"`
}

type apiLink struct {
	NS    int    `json:"ns"`
	Title string `json:"title"`
}

// requestForm converts a title to the form used in query strings.
func requestForm(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

// titleMap applies normalization and redirect chains reported by one
// response.
type titleMap struct {
	normalized map[string]string
	redirects  map[string]string
}

func newTitleMap(q *apiQuery) titleMap {
	m := titleMap{
		normalized: make(map[string]string, len(q.Normalized)),
		redirects:  make(map[string]string, len(q.Redirects)),
	}
	for _, n := range q.Normalized {
		m.normalized[n.From] = n.To
	}
	for _, r := range q.Redirects {
		m.redirects[r.From] = r.To
	}
	return m
}

// canonical follows the normalization of requested and then its redirect
// chain. Redirect loops stop after every redirect was taken once.
func (m titleMap) canonical(requested string) string {
	title := requested
	if to, ok := m.normalized[title]; ok {
		title = to
	}
	for i := 0; i <= len(m.redirects); i++ {
		to, ok := m.redirects[title]
		if !ok || to == title {
			break
		}
		title = to
	}
	return title
}

// pageByTitle indexes pages by title.
func pageByTitle(pages []apiPage) map[string]apiPage {
	out := make(map[string]apiPage, len(pages))
	for _, p := range pages {
		out[p.Title] = p
	}
	return out
}
