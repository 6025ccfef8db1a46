package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconGood     = "\uf00c"     // nf-fa-check
	IconBad      = "\uf00d"     // nf-fa-times
	IconPivot    = "\uf061"     // nf-fa-arrow_right
	IconLocal    = "\uf015"     // nf-fa-home
	IconRemote   = "\uf0c2"     // nf-fa-cloud
	IconBisect   = "\U000F0C4D" // nf-md-source_branch_check
	IconDisabled = "\uf05e"     // nf-fa-ban

	IconInfo    = "\uf05a" // nf-fa-info_circle
	IconWarning = "\uf071" // nf-fa-warning
	IconError   = "\uf057" // nf-fa-times_circle
)
