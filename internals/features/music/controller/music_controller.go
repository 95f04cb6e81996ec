// 📁 controller/music_controller.go
package controller

import (
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"

	"momentoamor_backend/internals/configs"
	helper "momentoamor_backend/internals/helpers"
)

// MusicController powers the soundtrack picker on the order form. Tracks
// come from the iTunes Search API (no key required); when a YouTube API key
// is configured each track also gets a playable video id.
type MusicController struct {
	itunes  *resty.Client
	youtube *resty.Client
}

func NewMusicController() *MusicController {
	return &MusicController{
		itunes: resty.New().
			SetBaseURL("https://itunes.apple.com").
			SetTimeout(8 * time.Second),
		youtube: resty.New().
			SetBaseURL("https://www.googleapis.com/youtube/v3").
			SetTimeout(8 * time.Second),
	}
}

type trackResult struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	ArtworkURL string `json:"artwork_url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	VideoID    string `json:"video_id,omitempty"`
}

type itunesResponse struct {
	Results []struct {
		TrackName     string `json:"trackName"`
		ArtistName    string `json:"artistName"`
		ArtworkURL100 string `json:"artworkUrl100"`
		PreviewURL    string `json:"previewUrl"`
	} `json:"results"`
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// 🔵 SEARCH: GET /api/music/search?q=...
func (ctrl *MusicController) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if len(query) < 2 {
		return helper.Error(c, fiber.StatusBadRequest, "Informe pelo menos 2 caracteres")
	}

	var parsed itunesResponse
	resp, err := ctrl.itunes.R().
		SetContext(c.Context()).
		SetQueryParams(map[string]string{
			"term":    query,
			"media":   "music",
			"entity":  "song",
			"limit":   "8",
			"country": "BR",
		}).
		SetResult(&parsed).
		Get("/search")
	if err != nil || resp.IsError() {
		log.Printf("❌ music search failed: %v (status=%d)", err, resp.StatusCode())
		return helper.Error(c, fiber.StatusBadGateway, "Busca de músicas indisponível")
	}

	tracks := make([]trackResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		tracks = append(tracks, trackResult{
			Title:      r.TrackName,
			Artist:     r.ArtistName,
			ArtworkURL: r.ArtworkURL100,
			PreviewURL: r.PreviewURL,
		})
	}

	if configs.YouTubeAPIKey != "" {
		for i := range tracks {
			tracks[i].VideoID = ctrl.lookupVideo(c, tracks[i].Title+" "+tracks[i].Artist)
		}
	}

	return helper.Success(c, "OK", tracks)
}

func (ctrl *MusicController) lookupVideo(c *fiber.Ctx, query string) string {
	var parsed youtubeSearchResponse
	resp, err := ctrl.youtube.R().
		SetContext(c.Context()).
		SetQueryParams(map[string]string{
			"part":       "id",
			"q":          query,
			"type":       "video",
			"maxResults": "1",
			"key":        configs.YouTubeAPIKey,
		}).
		SetResult(&parsed).
		Get("/search")
	if err != nil || resp.IsError() || len(parsed.Items) == 0 {
		return ""
	}
	return parsed.Items[0].ID.VideoID
}
