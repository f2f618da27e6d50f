package intel

import "testing"

func TestParseFeedLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want string
	}{
		{name: "plain url", line: "https://evil.example/login?x=1#frag", want: "https://evil.example/login?x=1#frag"},
		{name: "surrounding whitespace", line: "   http://203.0.113.7/verify  ", want: "http://203.0.113.7/verify"},
		{name: "comment", line: "# generated 2025-01-01", want: ""},
		{name: "blank", line: "   ", want: ""},
		{name: "csv row", line: `8812345,"http://paypa1.example/a,b",2025-01-01,yes`, want: "http://paypa1.example/a,b"},
		{name: "no url", line: "evil.example", want: ""},
		{name: "uppercase scheme", line: "HTTPS://Evil.Example/Path", want: "HTTPS://Evil.Example/Path"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseFeedLine(tc.line); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	if got := NormalizeURL("\thttp://evil.example/ \n"); got != "http://evil.example/" {
		t.Fatalf("unexpected normalized url %q", got)
	}
}
