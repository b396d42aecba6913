package event

// traitPaths lists where a trait is looked for, context traits first.
func traitPaths(trait string) []string {
	return []string{"context.traits." + trait, "traits." + trait}
}

func (e *Event) trait(name string) string {
	v, _ := e.Lookup(traitPaths(name)...)
	return v
}

// ResolveName returns a human readable name for the user of an event:
//  1. traits.name
//  2. traits.firstName + " " + traits.lastName
//  3. traits.firstName
//  4. traits.lastName
//  5. traits.username
//  6. the email address
//  7. "User " + userId
//  8. "Anonymous user " + anonymousId
func ResolveName(e *Event) string {
	if name := e.trait("name"); name != "" {
		return name
	}

	first, last := e.trait("firstName"), e.trait("lastName")
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}

	if username := e.trait("username"); username != "" {
		return username
	}
	if email := e.Email(); email != "" {
		return email
	}
	if id := e.UserID(); id != "" {
		return "User " + id
	}
	return "Anonymous user " + e.AnonymousID()
}
