// Package useragent classifies raw User-Agent strings into the coarse
// device/browser/OS buckets stored alongside analytics events.
package useragent

import (
	"fmt"
	"os"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Parser wraps the uap-go parser with device type classification.
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo is the classification result for one User-Agent string.
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, ...
	OS         string // Windows, iOS, Android, ...
}

// New creates a parser. When regexFilePath is non-empty the regex definitions
// are loaded from that file; otherwise the definitions compiled into uap-go
// are used.
func New(regexFilePath string, log *zap.Logger) (*Parser, error) {
	if regexFilePath == "" {
		return &Parser{parser: uaparser.NewFromSaved(), log: log}, nil
	}

	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file: %w", err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))
	return &Parser{parser: parser, log: log}, nil
}

// Parse classifies a User-Agent string. An empty input yields all-unknown.
func (p *Parser) Parse(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{DeviceType: "unknown", Browser: "unknown", OS: "unknown"}
	}

	client := p.parser.Parse(userAgent)

	info := DeviceInfo{
		Browser:    orUnknown(client.UserAgent.Family),
		OS:         orUnknown(client.Os.Family),
		DeviceType: deviceType(client, userAgent),
	}

	p.log.Debug("parsed User-Agent",
		zap.String("device_type", info.DeviceType),
		zap.String("browser", info.Browser),
		zap.String("os", info.OS),
	)

	return info
}

func deviceType(client *uaparser.Client, userAgent string) string {
	if isBot(client.UserAgent.Family, userAgent) {
		return "bot"
	}

	osFamily := client.Os.Family
	switch {
	case strings.Contains(osFamily, "iOS"):
		if strings.Contains(userAgent, "iPad") {
			return "tablet"
		}
		return "mobile"
	case strings.Contains(osFamily, "Android"):
		// Android tablets omit "Mobile" from the UA string.
		if !strings.Contains(userAgent, "Mobile") {
			return "tablet"
		}
		return "mobile"
	case strings.Contains(osFamily, "Windows Phone"), strings.Contains(osFamily, "BlackBerry"):
		return "mobile"
	}

	if containsFold(client.Device.Family, "tablet") || strings.Contains(client.Device.Family, "Kindle") {
		return "tablet"
	}

	for _, desktop := range []string{"Windows", "Mac OS X", "macOS", "Linux", "Ubuntu", "Chrome OS", "FreeBSD"} {
		if strings.Contains(osFamily, desktop) {
			return "desktop"
		}
	}

	return "unknown"
}

func isBot(uaFamily, userAgent string) bool {
	for _, indicator := range []string{"bot", "crawler", "spider", "scraper", "facebookexternalhit", "slurp", "preview"} {
		if containsFold(uaFamily, indicator) || containsFold(userAgent, indicator) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func orUnknown(s string) string {
	if s == "" || s == "Other" {
		return "unknown"
	}
	return s
}
