package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encore/internal/sim"
	"encore/internal/store"

	"github.com/google/uuid"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateSave(ctx context.Context, artist string, seed int64) (sim.Summary, error) {
	var out sim.Summary
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/saves", map[string]any{
		"artist": artist,
		"seed":   seed,
	}, &out)
	return out, err
}

func (c *Client) ListSaves(ctx context.Context) ([]store.SaveHeader, error) {
	var out struct {
		Saves []store.SaveHeader `json:"saves"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/saves", nil, &out)
	return out.Saves, err
}

func (c *Client) Summary(ctx context.Context, saveID string) (sim.Summary, error) {
	var out sim.Summary
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/saves/"+url.PathEscape(saveID), nil, &out)
	return out, err
}

func (c *Client) DeleteSave(ctx context.Context, saveID string) error {
	return c.jsonRequest(ctx, http.MethodDelete, "/v1/saves/"+url.PathEscape(saveID), nil, nil)
}

func (c *Client) Advance(ctx context.Context, saveID string, weeks int) (sim.CommandResult, error) {
	var out sim.CommandResult
	err := c.jsonRequest(ctx, http.MethodPost, c.savePath(saveID, "/advance"), map[string]any{
		"weeks": weeks,
	}, &out)
	return out, err
}

func (c *Client) RecordSong(ctx context.Context, saveID, title, genre string) (*sim.Song, error) {
	var out struct {
		Song *sim.Song `json:"song"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, c.savePath(saveID, "/songs"), map[string]any{
		"title": title,
		"genre": genre,
	}, &out)
	return out.Song, err
}

func (c *Client) ListSongs(ctx context.Context, saveID string) ([]*sim.Song, error) {
	var out struct {
		Songs []*sim.Song `json:"songs"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, c.savePath(saveID, "/songs"), nil, &out)
	return out.Songs, err
}

func (c *Client) AssembleRelease(ctx context.Context, saveID, title, kind string, songIDs []string) (*sim.Release, error) {
	var out struct {
		Release *sim.Release `json:"release"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, c.savePath(saveID, "/releases"), map[string]any{
		"title":    title,
		"kind":     kind,
		"song_ids": songIDs,
	}, &out)
	return out.Release, err
}

func (c *Client) Chart(ctx context.Context, saveID, kind, genre string) (sim.ChartSnapshot, error) {
	path := c.savePath(saveID, "/charts/"+url.PathEscape(kind))
	if genre != "" {
		path += "?genre=" + url.QueryEscape(genre)
	}
	var out sim.ChartSnapshot
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Inbox(ctx context.Context, saveID string) ([]*sim.Email, error) {
	var out struct {
		Emails []*sim.Email `json:"emails"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, c.savePath(saveID, "/inbox"), nil, &out)
	return out.Emails, err
}

func (c *Client) MarkEmailRead(ctx context.Context, saveID, emailID string) error {
	return c.jsonRequest(ctx, http.MethodPost,
		c.savePath(saveID, "/inbox/"+url.PathEscape(emailID)+"/read"), nil, nil)
}

func (c *Client) Offers(ctx context.Context, saveID string) ([]json.RawMessage, error) {
	var out struct {
		Offers []json.RawMessage `json:"offers"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, c.savePath(saveID, "/offers"), nil, &out)
	return out.Offers, err
}

func (c *Client) AcceptOffer(ctx context.Context, saveID, offerID string) (sim.CommandResult, error) {
	var out sim.CommandResult
	err := c.jsonRequest(ctx, http.MethodPost,
		c.savePath(saveID, "/offers/"+url.PathEscape(offerID)+"/accept"), nil, &out)
	return out, err
}

func (c *Client) DeclineOffer(ctx context.Context, saveID, offerID string) (sim.CommandResult, error) {
	var out sim.CommandResult
	err := c.jsonRequest(ctx, http.MethodPost,
		c.savePath(saveID, "/offers/"+url.PathEscape(offerID)+"/decline"), nil, &out)
	return out, err
}

func (c *Client) AnswerQuestion(ctx context.Context, saveID, offerID, text string) (sim.CommandResult, error) {
	var out sim.CommandResult
	err := c.jsonRequest(ctx, http.MethodPost,
		c.savePath(saveID, "/offers/"+url.PathEscape(offerID)+"/answer"), map[string]any{
			"text": text,
		}, &out)
	return out, err
}

func (c *Client) Submissions(ctx context.Context, saveID string) ([]*sim.Submission, error) {
	var out struct {
		Submissions []*sim.Submission `json:"submissions"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, c.savePath(saveID, "/submissions"), nil, &out)
	return out.Submissions, err
}

func (c *Client) PlanRollout(ctx context.Context, saveID, submissionID string, projectDate sim.GameDate, singles []sim.SinglePlan) error {
	return c.jsonRequest(ctx, http.MethodPost,
		c.savePath(saveID, "/submissions/"+url.PathEscape(submissionID)+"/plan"), map[string]any{
			"project_date": projectDate,
			"singles":      singles,
		}, nil)
}

func (c *Client) SpendPromo(ctx context.Context, saveID, submissionID, action, songID string) (*sim.Submission, error) {
	var out struct {
		Submission *sim.Submission `json:"submission"`
	}
	err := c.jsonRequest(ctx, http.MethodPost,
		c.savePath(saveID, "/submissions/"+url.PathEscape(submissionID)+"/promo"), map[string]any{
			"action":  action,
			"song_id": songID,
		}, &out)
	return out.Submission, err
}

func (c *Client) Ceremonies(ctx context.Context, saveID string) ([]*sim.Ceremony, error) {
	var out struct {
		Ceremonies []*sim.Ceremony `json:"ceremonies"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, c.savePath(saveID, "/awards"), nil, &out)
	return out.Ceremonies, err
}

func (c *Client) SubmitAward(ctx context.Context, saveID, award string, entries []sim.SubmittedEntry) error {
	return c.jsonRequest(ctx, http.MethodPost,
		c.savePath(saveID, "/awards/"+url.PathEscape(award)+"/submit"), map[string]any{
			"entries": entries,
		}, nil)
}

func (c *Client) Tours(ctx context.Context, saveID string) ([]*sim.Tour, error) {
	var out struct {
		Tours []*sim.Tour `json:"tours"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, c.savePath(saveID, "/tours"), nil, &out)
	return out.Tours, err
}

func (c *Client) PlanTour(ctx context.Context, saveID, name string, venues []sim.Venue) (*sim.Tour, error) {
	var out struct {
		Tour *sim.Tour `json:"tour"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, c.savePath(saveID, "/tours"), map[string]any{
		"name":   name,
		"venues": venues,
	}, &out)
	return out.Tour, err
}

func (c *Client) StartTour(ctx context.Context, saveID, tourID string) error {
	return c.jsonRequest(ctx, http.MethodPost,
		c.savePath(saveID, "/tours/"+url.PathEscape(tourID)+"/start"), nil, nil)
}

func (c *Client) savePath(saveID, suffix string) string {
	return "/v1/saves/" + url.PathEscape(saveID) + suffix
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// One fresh key per mutation keeps accidental transport retries from
	// double-applying a command.
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
