package returnurl_test

import (
	"testing"

	"github.com/filingdesk/filingdesk/pkg/returnurl"
)

func BenchmarkIssue(b *testing.B) {
	svc, err := returnurl.New("benchmark-secret", []string{"/dashboard"})
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		if _, err := svc.Issue("/dashboard"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkValidate(b *testing.B) {
	svc, err := returnurl.New("benchmark-secret", []string{"/dashboard"})
	if err != nil {
		b.Fatal(err)
	}

	token, err := svc.Issue("/dashboard")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := svc.Validate(token); err != nil {
			b.Fatal(err)
		}
	}
}
