package auth

import (
	"testing"
)

func TestIsEmailAllowedMatchesStudentDomain(t *testing.T) {
	authenticator := &GoogleAuthenticator{studentDomain: "aluno.example.com"}

	if !authenticator.IsEmailAllowed("maria@aluno.example.com") {
		t.Fatal("expected student domain email to be allowed")
	}
}

func TestIsEmailAllowedIsCaseInsensitive(t *testing.T) {
	authenticator := &GoogleAuthenticator{studentDomain: "aluno.example.com"}

	if !authenticator.IsEmailAllowed("Maria@Aluno.Example.COM") {
		t.Fatal("expected mixed-case email to be allowed")
	}
}

func TestIsEmailAllowedRejectsOtherDomains(t *testing.T) {
	authenticator := &GoogleAuthenticator{studentDomain: "aluno.example.com"}

	for _, email := range []string{
		"maria@gmail.com",
		"maria@example.com",
		"maria@evil-aluno.example.com",
		"maria@aluno.example.com.attacker.net",
	} {
		if authenticator.IsEmailAllowed(email) {
			t.Fatalf("expected %q to be rejected", email)
		}
	}
}

func TestIsEmailAllowedRejectsMalformedAddresses(t *testing.T) {
	authenticator := &GoogleAuthenticator{studentDomain: "aluno.example.com"}

	for _, email := range []string{"", "maria", "maria@", "@aluno.example.com@x"} {
		if authenticator.IsEmailAllowed(email) {
			t.Fatalf("expected %q to be rejected", email)
		}
	}
}

func TestGenerateState(t *testing.T) {
	state1, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState returned error: %v", err)
	}
	state2, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState returned error: %v", err)
	}

	if state1 == "" || state2 == "" {
		t.Fatal("expected non-empty states")
	}
	if state1 == state2 {
		t.Fatal("expected distinct states")
	}
}
