package utils

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Heights we serve to clients; other renditions are ignored.
var servedHeights = map[int]bool{360: true, 720: true, 1024: true}

var (
	signaturePattern = regexp.MustCompile(`[?&]s(?:ignature)?=([^&]+)`)
	tokenPattern     = regexp.MustCompile(`[?&]oauth2_token_id?=([^&]+)`)
)

// VideoRendition carries the pieces a player needs to build a playback url for
// one resolution.
type VideoRendition struct {
	Signature string `json:"signature"`
	Token     string `json:"token"`
}

// VimeoClient fetches per-resolution playback parameters from the Vimeo API,
// caching results for the life of the process (renditions are immutable per
// upload).
type VimeoClient struct {
	client *resty.Client
	token  string

	mu    sync.RWMutex
	cache map[string]map[string]VideoRendition
}

// NewVimeoClient builds a client using the given API token.
func NewVimeoClient(token string) *VimeoClient {
	return &VimeoClient{
		client: resty.New().
			SetBaseURL("https://api.vimeo.com").
			SetTimeout(15 * time.Second),
		token: token,
		cache: map[string]map[string]VideoRendition{},
	}
}

type vimeoVideo struct {
	Files []struct {
		Height int    `json:"height"`
		Link   string `json:"link"`
	} `json:"files"`
}

// GetResolutions returns a map of "{height}p" to playback parameters for the
// video, serving from cache after the first fetch.
func (v *VimeoClient) GetResolutions(videoId string) (map[string]VideoRendition, error) {
	v.mu.RLock()
	cached, ok := v.cache[videoId]
	v.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var video vimeoVideo
	resp, err := v.client.R().
		SetAuthToken(v.token).
		SetResult(&video).
		Get("/videos/" + videoId)
	if err != nil {
		return nil, fmt.Errorf("vimeo lookup failed for %s: %w", videoId, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("vimeo lookup for %s returned status %d", videoId, resp.StatusCode())
	}

	renditions := map[string]VideoRendition{}
	for _, file := range video.Files {
		if !servedHeights[file.Height] {
			continue
		}
		rendition, ok := parseRendition(file.Link)
		if !ok {
			continue
		}
		renditions[fmt.Sprintf("%dp", file.Height)] = rendition
	}

	v.mu.Lock()
	v.cache[videoId] = renditions
	v.mu.Unlock()
	return renditions, nil
}

// GetResolutionsBatch looks up several videos, skipping the ones that fail.
func (v *VimeoClient) GetResolutionsBatch(videoIds []string) map[string]map[string]VideoRendition {
	out := make(map[string]map[string]VideoRendition, len(videoIds))
	for _, id := range videoIds {
		renditions, err := v.GetResolutions(id)
		if err != nil {
			continue
		}
		out[id] = renditions
	}
	return out
}

func parseRendition(link string) (VideoRendition, bool) {
	sig := signaturePattern.FindStringSubmatch(link)
	tok := tokenPattern.FindStringSubmatch(link)
	if sig == nil || tok == nil {
		return VideoRendition{}, false
	}
	return VideoRendition{Signature: sig[1], Token: tok[1]}, true
}
