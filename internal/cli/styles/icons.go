package styles

// Nerd-font icons used across CLI surfaces.
const (
	IconVersion   = "" // tag
	IconGitBranch = "" // git branch
	IconCalendar  = "" // calendar
	IconGo        = "" // go gopher
	IconDoctor    = "" // stethoscope
	IconCheck     = "" // check mark
	IconCross     = "" // cross
	IconPlug      = "" // plug
	IconShield    = "" // shield
	IconTable     = "" // table
)
