package annotation

import (
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces an uploaded name to a flat ASCII file name.
// Path separators become word breaks, whitespace runs become underscores,
// anything outside [A-Za-z0-9_.-] is dropped and leading or trailing dots
// and underscores are trimmed. The result may be empty.
func SecureFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// AnnotatedName is the stored name of an annotated copy.
func AnnotatedName(original string) string {
	return "annotated_" + SecureFilename(original)
}

func hasSVGExtension(name string) bool {
	i := strings.LastIndex(name, ".")
	return i >= 0 && strings.EqualFold(name[i+1:], "svg")
}
