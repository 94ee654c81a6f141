package domain

// ArtifactKind tags where a syllabus or orientation artifact was found.
type ArtifactKind int

const (
	ArtifactSyllabus ArtifactKind = iota
	ArtifactFrontPage
	ArtifactPage
	ArtifactModule
	ArtifactFile
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactSyllabus:
		return "Syllabus"
	case ArtifactFrontPage:
		return "Front Page"
	case ArtifactPage:
		return "Page"
	case ArtifactModule:
		return "Module"
	case ArtifactFile:
		return "File"
	default:
		return "Unknown"
	}
}

// ClassifiedArtifact is one digest finding. It lives only until it is turned
// into a Block.
type ClassifiedArtifact struct {
	Kind    ArtifactKind
	Course  string
	Title   string
	Preview string
	URL     string
}

// Text renders the bullet line, e.g. "[Page] Biology 101: Start Here — Welcome to...".
func (a ClassifiedArtifact) Text() string {
	tag := "[" + a.Kind.String() + "] "
	switch a.Kind {
	case ArtifactSyllabus:
		return tag + a.Course + " — " + a.Preview
	case ArtifactFrontPage, ArtifactPage:
		return tag + a.Course + ": " + a.Title + " — " + a.Preview
	default:
		return tag + a.Course + ": " + a.Title
	}
}

// Block converts the artifact into a bulleted digest line linking to URL.
func (a ClassifiedArtifact) Block() Block {
	return Bullet(a.Text(), a.URL)
}
