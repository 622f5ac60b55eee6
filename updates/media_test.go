package updates

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractMedia(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantText  string
		wantThumb string
		wantFoot  string
	}{
		{
			name:     "no images",
			text:     "Just text.",
			wantText: "Just text.",
		},
		{
			name:      "named slots",
			text:      "Hello ![banner](https://cdn.example/b.png) world\n![seal](img/seal.png)",
			wantText:  "Hello world",
			wantThumb: "img/seal.png",
			wantFoot:  "https://cdn.example/b.png",
		},
		{
			name:      "unnamed fill thumbnail then footer",
			text:      "![one](a.png) ![two](b.png) ![three](c.png) text",
			wantText:  "text",
			wantThumb: "a.png",
			wantFoot:  "b.png",
		},
		{
			name:      "named slot wins over unnamed",
			text:      "![pic](a.png)\n![thumb](t.png)",
			wantThumb: "t.png",
			wantFoot:  "a.png",
		},
		{
			name:     "signature alias and title attribute",
			text:     `Done. ![Signature](sig.png "by the dev")`,
			wantText: "Done.",
			wantFoot: "sig.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, m := ExtractMedia(tt.text)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			got := [2]string{}
			if m.Thumbnail != nil {
				got[0] = m.Thumbnail.Src
			}
			if m.Footer != nil {
				got[1] = m.Footer.Src
			}
			if diff := cmp.Diff([2]string{tt.wantThumb, tt.wantFoot}, got); diff != "" {
				t.Errorf("media (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImageRemote(t *testing.T) {
	for src, want := range map[string]bool{
		"https://x/y.png": true,
		"HTTP://x/y.png":  true,
		"assets/seal.png": false,
		"/abs/seal.png":   false,
	} {
		if got := (Image{Src: src}).Remote(); got != want {
			t.Errorf("Remote(%q) = %v", src, got)
		}
	}
}

func TestEntryWithoutMedia(t *testing.T) {
	e := Entry{
		Version: "1.0",
		Summary: "Intro ![seal](s.png)",
		Sections: []Section{
			{Name: "Added", Items: []string{"![footer](f.png)", "Real item"}},
			{Name: "Art", Items: []string{"![x](x.png)"}},
		},
	}
	clean, m := e.WithoutMedia()
	want := Entry{Version: "1.0", Summary: "Intro", Sections: []Section{{Name: "Added", Items: []string{"Real item"}}}}
	if diff := cmp.Diff(want, clean); diff != "" {
		t.Errorf("clean entry (-want +got):\n%s", diff)
	}
	if m.Thumbnail == nil || m.Thumbnail.Src != "s.png" || m.Footer == nil || m.Footer.Src != "f.png" {
		t.Errorf("media = %+v", m)
	}
	if len(e.Sections[0].Items) != 2 {
		t.Error("WithoutMedia modified the original entry")
	}
}
