package domain

// Treatments is the catalog of treatment names offered when logging a
// Treatment entry. Free text is still accepted; the catalog drives completion.
var Treatments = []string{
	"Metformin",
	"Clomiphene (Clomid)",
	"Letrozole (Femara)",
	"Birth Control Pills",
	"Spironolactone",
	"Eflornithine cream (Vaniqa)",
	"Gonadotropins",
	"Progestin therapy",
	"GLP-1 Receptor Agonists (e.g., Semaglutide)",
	"Diet modification",
	"Regular exercise",
	"Weight management",
	"Myo-inositol",
	"D-chiro-inositol",
	"Vitamin D supplementation",
	"Omega-3 fatty acids",
	"Ovarian drilling",
}
