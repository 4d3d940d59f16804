package intra

import (
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	loginRegex = regexp.MustCompile(`^[a-z][a-z0-9-]{1,15}$`)
	titleRegex = regexp.MustCompile(`(?i)^\s*([a-z][a-z0-9-]{1,15})\s*[|\-–]`)
)

// ExtractLogin finds the intra login of the signed-in user on a profile page.
func ExtractLogin(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	if val, ok := doc.Find("[data-login]").First().Attr("data-login"); ok {
		if login := strings.TrimSpace(val); loginRegex.MatchString(login) {
			return login, nil
		}
	}
	var login string
	doc.Find(".login").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if loginRegex.MatchString(text) {
			login = text
			return false
		}
		return true
	})
	if login != "" {
		return login, nil
	}
	if m := titleRegex.FindStringSubmatch(doc.Find("title").First().Text()); len(m) > 1 {
		return strings.ToLower(m[1]), nil
	}
	return "", errors.New("login not found on page")
}

// IsSignInPage reports whether html is the intra sign-in form.
func IsSignInPage(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	if doc.Find("form#new_user, form[action*='sign_in'], input[name='user[login]']").Length() > 0 {
		return true
	}
	return doc.Find("#kc-form-login").Length() > 0
}
