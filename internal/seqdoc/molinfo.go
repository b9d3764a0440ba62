package seqdoc

// Biomol is the biological molecule class of MolInfo.
type Biomol uint8

const (
	BiomolUnknown Biomol = iota
	BiomolGenomic
	BiomolPreRNA
	BiomolMRNA
	BiomolRRNA
	BiomolTRNA
	BiomolOtherGenetic
	BiomolGenomicMRNA
	BiomolCRNA
	BiomolTranscribedRNA
	BiomolNcRNA
	BiomolTmRNA
	BiomolPeptide
	BiomolOther
)

var biomolNames = [...]string{
	BiomolUnknown:        "unknown",
	BiomolGenomic:        "genomic",
	BiomolPreRNA:         "pre-RNA",
	BiomolMRNA:           "mRNA",
	BiomolRRNA:           "rRNA",
	BiomolTRNA:           "tRNA",
	BiomolOtherGenetic:   "other-genetic",
	BiomolGenomicMRNA:    "genomic-mRNA",
	BiomolCRNA:           "cRNA",
	BiomolTranscribedRNA: "transcribed-RNA",
	BiomolNcRNA:          "ncRNA",
	BiomolTmRNA:          "tmRNA",
	BiomolPeptide:        "peptide",
	BiomolOther:          "other",
}

func (b Biomol) String() string {
	if int(b) < len(biomolNames) {
		return biomolNames[b]
	}
	return "unknown"
}

// Tech is the sequencing technique of MolInfo.
type Tech uint8

const (
	TechUnknown Tech = iota
	TechStandard
	TechEST
	TechSTS
	TechHTGS3
	TechWGS
	TechTSA
	TechTargeted
	TechBarcode
	TechOther
)

var techNames = [...]string{
	TechUnknown:  "unknown",
	TechStandard: "standard",
	TechEST:      "est",
	TechSTS:      "sts",
	TechHTGS3:    "htgs-3",
	TechWGS:      "wgs",
	TechTSA:      "tsa",
	TechTargeted: "targeted",
	TechBarcode:  "barcode",
	TechOther:    "other",
}

func (t Tech) String() string {
	if int(t) < len(techNames) {
		return techNames[t]
	}
	return "unknown"
}

// MolInfo describes the molecule and technique of a sequence.
type MolInfo struct {
	Biomol Biomol `msgpack:"biomol"`
	Tech   Tech   `msgpack:"tech"`
}
