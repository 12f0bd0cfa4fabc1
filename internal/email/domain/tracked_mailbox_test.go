package domain

import "testing"

func TestDetectProvider(t *testing.T) {
	cases := []struct {
		address string
		want    Provider
	}{
		{"someone@gmail.com", ProviderGmail},
		{"Someone@GMAIL.com", ProviderGmail},
		{"someone@googlemail.com", ProviderGmail},
		{"someone@outlook.com", ProviderOutlook},
		{"someone@hotmail.com", ProviderOutlook},
		{"someone@live.com", ProviderOutlook},
		{"someone@fastmail.fm", ProviderOther},
		{"someone@company.io", ProviderOther},
		{"  padded@gmail.com ", ProviderGmail},
	}
	for _, tc := range cases {
		if got := DetectProvider(tc.address); got != tc.want {
			t.Errorf("DetectProvider(%q) = %s, want %s", tc.address, got, tc.want)
		}
	}
}
