package cors

import "testing"

func TestRemoveDefaultPort(t *testing.T) {
	cases := map[string]string{
		"http://testurl.com:80":               "http://testurl.com",
		"https://testurl.com:8080":             "https://testurl.com:8080",
		"http://[2001:db8:4006:812::200e]:80":  "http://[2001:db8:4006:812::200e]",
		"https://testurl.com:443":              "https://testurl.com",
	}

	for origin, want := range cases {
		if got := removeDefaultPort(origin); got != want {
			t.Errorf("removeDefaultPort(%q) = %q, want %q", origin, got, want)
		}
	}
}
