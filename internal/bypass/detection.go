package bypass

import (
	"bytes"
	"net/http"
	"strings"
)

// Response is the part of a fetched page the detectors look at.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Detector reports whether a response is a block or challenge page rather
// than real content, and names the mechanism that produced it.
type Detector func(res Response) (detected bool, source string)

// DefaultDetectors returns the detectors run on every search page.
func DefaultDetectors() []Detector {
	return []Detector{
		detectNaverCaptcha,
		detectCloudflare,
		detectAkamai,
	}
}

// Analyze runs res through detectors and returns the first source that fires.
func Analyze(res Response, detectors []Detector) (bool, string) {
	for _, d := range detectors {
		if detected, source := d(res); detected {
			return true, source
		}
	}
	return false, ""
}

// Naver answers suspected automation with HTTP 200 and an interstitial
// asking the user to solve a captcha, so status alone is not enough. The
// interstitial never carries result items, and a results page may quote the
// markers in a headline or snippet.
var naverResultMarker = []byte("news_area")

var naverCaptchaMarkers = [][]byte{
	[]byte("ncaptcha"),
	[]byte("captcha.naver.com"),
	[]byte("비정상적인 검색"),
	[]byte("자동입력 방지"),
}

func detectNaverCaptcha(res Response) (bool, string) {
	if res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests {
		if strings.Contains(strings.ToLower(res.Header.Get("Server")), "nfront") {
			return true, "Naver"
		}
	}
	if bytes.Contains(res.Body, naverResultMarker) {
		return false, ""
	}
	for _, m := range naverCaptchaMarkers {
		if bytes.Contains(res.Body, m) {
			return true, "Naver"
		}
	}
	return false, ""
}

func detectCloudflare(res Response) (bool, string) {
	if res.StatusCode != http.StatusForbidden && res.StatusCode != http.StatusServiceUnavailable {
		return false, ""
	}
	if strings.Contains(strings.ToLower(res.Header.Get("Server")), "cloudflare") {
		return true, "Cloudflare"
	}
	if bytes.Contains(res.Body, []byte("cf-browser-verification")) ||
		bytes.Contains(res.Body, []byte("cf-turnstile")) ||
		bytes.Contains(res.Body, []byte("Attention Required! | Cloudflare")) {
		return true, "Cloudflare"
	}
	return false, ""
}

// detectAkamai catches the generic "Access Denied ... Reference #" page.
func detectAkamai(res Response) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(strings.ToLower(res.Header.Get("Server")), "akamai") {
		return true, "Akamai"
	}
	if bytes.Contains(res.Body, []byte("Reference #")) && bytes.Contains(res.Body, []byte("Access Denied")) {
		return true, "Akamai"
	}
	return false, ""
}
