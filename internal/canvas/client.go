package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomnomnom/linkheader"
)

// ErrNotFound is returned when the upstream answers 404.
var ErrNotFound = errors.New("not found")

// StatusError reports any other non-2xx upstream answer.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

type Client struct {
	baseURL    string
	token      string
	perPage    int
	httpClient *http.Client
}

func NewClient(baseURL, token string, perPage int, timeout time.Duration) *Client {
	if perPage <= 0 {
		perPage = 100
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		perPage: perPage,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get fetches a single resource into out. A 404 yields an error wrapping
// ErrNotFound.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, c.resourceURL(path, query))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// GetAll fetches every page of a list resource, following rel="next" links
// until none is left, and returns the items in server order.
func GetAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	if q.Get("per_page") == "" {
		q.Set("per_page", strconv.Itoa(c.perPage))
	}

	var items []T
	next := c.resourceURL(path, q)
	seen := map[string]bool{}
	for page := 1; next != ""; page++ {
		if seen[next] {
			return nil, fmt.Errorf("pagination loop on %s", next)
		}
		seen[next] = true

		slog.Debug("fetching page", "path", path, "page", page)
		resp, err := c.do(ctx, next)
		if err != nil {
			return nil, err
		}

		var batch []T
		err = json.NewDecoder(resp.Body).Decode(&batch)
		links := linkheader.ParseMultiple(resp.Header.Values("Link"))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s page %d: %w", path, page, err)
		}
		items = append(items, batch...)

		next = ""
		if nextLinks := links.FilterByRel("next"); len(nextLinks) > 0 {
			next = nextLinks[0].URL
		}
	}
	return items, nil
}

func (c *Client) Course(ctx context.Context, courseID string) (*Course, error) {
	var course Course
	if err := c.Get(ctx, "/courses/"+url.PathEscape(courseID), nil, &course); err != nil {
		return nil, fmt.Errorf("get course %s: %w", courseID, err)
	}
	return &course, nil
}

func (c *Client) Account(ctx context.Context, accountID int64) (*Account, error) {
	var account Account
	if err := c.Get(ctx, "/accounts/"+strconv.FormatInt(accountID, 10), nil, &account); err != nil {
		return nil, fmt.Errorf("get account %d: %w", accountID, err)
	}
	return &account, nil
}

func (c *Client) Enrollments(ctx context.Context, courseID string, filter EnrollmentFilter) ([]Enrollment, error) {
	q := url.Values{}
	for _, t := range filter.Types {
		q.Add("type[]", t)
	}
	for _, r := range filter.Roles {
		q.Add("role[]", r)
	}
	enrollments, err := GetAll[Enrollment](ctx, c, "/courses/"+url.PathEscape(courseID)+"/enrollments", q)
	if err != nil {
		return nil, fmt.Errorf("list enrollments of course %s: %w", courseID, err)
	}
	return enrollments, nil
}

func (c *Client) Assignments(ctx context.Context, courseID string) ([]Assignment, error) {
	assignments, err := GetAll[Assignment](ctx, c, "/courses/"+url.PathEscape(courseID)+"/assignments", nil)
	if err != nil {
		return nil, fmt.Errorf("list assignments of course %s: %w", courseID, err)
	}
	return assignments, nil
}

func (c *Client) Submissions(ctx context.Context, courseID string, assignmentID int64) ([]Submission, error) {
	path := fmt.Sprintf("/courses/%s/assignments/%d/submissions", url.PathEscape(courseID), assignmentID)
	submissions, err := GetAll[Submission](ctx, c, path, nil)
	if err != nil {
		return nil, fmt.Errorf("list submissions of assignment %d: %w", assignmentID, err)
	}
	return submissions, nil
}

func (c *Client) resourceURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do issues an authenticated GET and returns the response only for 2xx.
func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &StatusError{
			Method:     http.MethodGet,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}
