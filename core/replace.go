package core

// Replace substitutes matches of the pattern in subject with the
// replacement template. The template supports the engine's $1, ${name}
// and $$ expansions. All occurrences are replaced when the global flag
// is set, otherwise only the first.
//
// Like FindAll this is a pure derivation: the subject is never mutated
// and repeated calls yield identical output.
func (p *Pattern) Replace(subject, replacement string) (string, error) {
	count := 1
	if p.flags.Global {
		count = -1
	}
	out, err := p.re.Replace(subject, replacement, -1, count)
	if err != nil {
		return "", p.wrapEngineErr(err)
	}
	return out, nil
}
