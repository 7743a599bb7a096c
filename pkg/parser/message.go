package parser

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// maxMessageParts bounds how many MIME parts are walked in one message
const maxMessageParts = 64

// MessageText returns the readable body of a raw RFC 822 message, chosen
// from its text parts by SelectBody. Input that is not a MIME message, or
// has no text part, is returned unchanged so Normalize can still use it.
func MessageText(raw []byte) string {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}

	var plain, html []string
	walkPart(textPart{
		contentType: msg.Header.Get("Content-Type"),
		encoding:    msg.Header.Get("Content-Transfer-Encoding"),
		body:        msg.Body,
	}, &plain, &html, new(int))

	if len(plain)+len(html) == 0 {
		return string(raw)
	}
	return SelectBody(append(plain, html...)...)
}

// SelectBody picks the body that carries the ticket. Parts are tried in
// order and the first one holding a PNR wins. Without a PNR anywhere the
// part with the most readable text is used. A multipart/alternative mail
// may pair a one-line plain stub with the real HTML ticket.
func SelectBody(parts ...string) string {
	best, bestLen := "", 0
	for _, p := range parts {
		text := strings.TrimSpace(Normalize(p))
		if text == "" {
			continue
		}
		if _, ok := firstMatch(text, pnrChain); ok {
			return p
		}
		if len(text) > bestLen {
			best, bestLen = p, len(text)
		}
	}
	return best
}

type textPart struct {
	contentType string
	encoding    string
	body        io.Reader
}

func walkPart(p textPart, plain, html *[]string, seen *int) {
	*seen++
	if *seen > maxMessageParts {
		return
	}

	mediaType, params, err := mime.ParseMediaType(p.contentType)
	if err != nil {
		// RFC 2045 default
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return
		}
		mr := multipart.NewReader(p.body, boundary)
		for {
			part, err := mr.NextRawPart()
			if err != nil {
				return
			}
			walkPart(textPart{
				contentType: part.Header.Get("Content-Type"),
				encoding:    part.Header.Get("Content-Transfer-Encoding"),
				body:        part,
			}, plain, html, seen)
		}
	}

	if mediaType != "text/plain" && mediaType != "text/html" {
		return
	}

	data, err := io.ReadAll(decodeTransfer(p.body, p.encoding))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return
	}
	if mediaType == "text/plain" {
		*plain = append(*plain, string(data))
	} else {
		*html = append(*html, string(data))
	}
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		// the decoder skips line breaks on its own
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}
