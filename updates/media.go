package updates

import (
	"regexp"
	"strings"
)

var imageMarkup = regexp.MustCompile(`!\[([^\]]*)\]\(\s*([^)\s]+)(?:\s+"[^"]*")?\s*\)`)

// Image is one inline image reference.
type Image struct {
	Alt string
	Src string
}

// Remote reports whether the image is fetched by Discord rather than
// uploaded with the post.
func (i Image) Remote() bool {
	s := strings.ToLower(i.Src)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Media is the art picked for an update embed.
type Media struct {
	Thumbnail *Image
	Footer    *Image
}

// ExtractMedia strips inline image markup from text and picks the
// thumbnail and footer images from it.
func ExtractMedia(text string) (string, Media) {
	clean, imgs := extractImages(text)
	return clean, selectMedia(imgs)
}

func extractImages(text string) (string, []Image) {
	var imgs []Image
	clean := imageMarkup.ReplaceAllStringFunc(text, func(m string) string {
		sub := imageMarkup.FindStringSubmatch(m)
		imgs = append(imgs, Image{Alt: strings.TrimSpace(sub[1]), Src: sub[2]})
		return ""
	})
	return tidy(clean), imgs
}

// tidy drops lines left empty by removed markup and trims the rest.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if strings.TrimSpace(l) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, strings.Join(strings.Fields(l), " "))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func selectMedia(imgs []Image) Media {
	var m Media
	var rest []Image
	for _, img := range imgs {
		switch strings.ToLower(img.Alt) {
		case "thumbnail", "seal", "thumb":
			if m.Thumbnail == nil {
				m.Thumbnail = &img
			}
		case "footer", "banner", "signature":
			if m.Footer == nil {
				m.Footer = &img
			}
		default:
			rest = append(rest, img)
		}
	}
	for _, img := range rest {
		switch {
		case m.Thumbnail == nil:
			m.Thumbnail = &img
		case m.Footer == nil:
			m.Footer = &img
		}
	}
	return m
}

// WithoutMedia strips image markup from the summary and every item and
// returns the art it found.
func (e Entry) WithoutMedia() (Entry, Media) {
	var imgs []Image
	out := e
	out.Summary, imgs = extractImages(e.Summary)
	out.Sections = make([]Section, 0, len(e.Sections))
	for _, s := range e.Sections {
		var items []string
		for _, it := range s.Items {
			clean, found := extractImages(it)
			imgs = append(imgs, found...)
			if clean != "" {
				items = append(items, clean)
			}
		}
		if len(items) > 0 {
			out.Sections = append(out.Sections, Section{Name: s.Name, Items: items})
		}
	}
	return out, selectMedia(imgs)
}
