package sharing

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	ImportParam  = "import"
	ShareIDParam = "share_id"
	// DeckPath is where share links land.
	DeckPath = "/safmeds"

	qrCodeEndpoint = "https://api.qrserver.com/v1/create-qr-code/"
	shortCodeLen   = 16
	alphanumerics  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewShortCode returns a 16 character alphanumeric share code: a base-36 timestamp
// followed by cryptographically random characters. Uniqueness is probabilistic only.
func NewShortCode(now time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	max := big.NewInt(int64(len(alphanumerics)))
	for b.Len() < shortCodeLen {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(fmt.Sprintf("rand.Int() > %v", err))
		}
		b.WriteByte(alphanumerics[n.Int64()])
	}
	return b.String()[:shortCodeLen]
}

// InlineLink builds <origin>/safmeds?import=<url-escaped base64 payload>.
func InlineLink(origin string, p Payload) (string, error) {
	encoded, err := EncodeInline(p)
	if err != nil {
		return "", err
	}
	return baseLink(origin) + "?" + ImportParam + "=" + url.QueryEscape(encoded), nil
}

// SharedLink builds <origin>/safmeds?share_id=<code>.
func SharedLink(origin, code string) string {
	return baseLink(origin) + "?" + ShareIDParam + "=" + url.QueryEscape(code)
}

func baseLink(origin string) string {
	return strings.TrimRight(origin, "/") + DeckPath
}

// QRCodeURL returns an image URL rendering link as a QR code.
func QRCodeURL(link string) string {
	return qrCodeEndpoint + "?size=180x180&data=" + url.QueryEscape(link)
}

// LinkKind tells which import path a link triggers.
type LinkKind int

const (
	LinkNone LinkKind = iota
	LinkInline
	LinkShared
)

// Link is a parsed share link.
type Link struct {
	Kind LinkKind
	// Value is the encoded payload or the share code.
	Value string
	// Stripped is the link with the consumed parameter removed.
	Stripped string
}

// ParseLink finds the import parameter of a share link. When both parameters are present
// the inline payload wins and share_id stays in Stripped.
func ParseLink(rawURL string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Link{}, fmt.Errorf("url.Parse() > %w", err)
	}

	query := u.Query()
	link := Link{Kind: LinkNone}
	switch {
	case query.Get(ImportParam) != "":
		link.Kind = LinkInline
		link.Value = query.Get(ImportParam)
		query.Del(ImportParam)
	case query.Get(ShareIDParam) != "":
		link.Kind = LinkShared
		link.Value = query.Get(ShareIDParam)
		query.Del(ShareIDParam)
	}
	u.RawQuery = query.Encode()
	link.Stripped = u.String()
	return link, nil
}
