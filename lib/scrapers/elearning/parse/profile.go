package parse

// ParseProfile reads name and email straight off the profile form
// inputs. A missing name means the page is not a usable profile page.
func ParseProfile(html string) (Profile, bool) {
	doc := document(html)

	name := doc.Find("input[name=name]").AttrOr("value", "")
	if name == "" {
		return Profile{}, false
	}

	return Profile{
		Name:  name,
		Email: doc.Find("input[name=email]").AttrOr("value", ""),
	}, true
}
