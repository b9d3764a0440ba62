package diag

import (
	"fmt"
)

// Category is the pipeline stage a diagnostic originates from.
type Category uint8

const (
	CatUnknown Category = iota
	CatInput
	CatMaster
	CatSubmission
	CatParse
	CatOutput
	CatServer
	CatOrganism
	CatSequence
	CatAccession
	CatReference
)

var categoryNames = [...]string{
	CatUnknown:    "UNKNOWN",
	CatInput:      "INPUT",
	CatMaster:     "MASTER",
	CatSubmission: "SUBMISSION",
	CatParse:      "PARSE",
	CatOutput:     "OUTPUT",
	CatServer:     "SERVER",
	CatOrganism:   "ORGANISM",
	CatSequence:   "SEQUENCE",
	CatAccession:  "ACCESSION",
	CatReference:  "REFERENCE",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("CATEGORY%d", uint8(c))
}

// Code is a category and a category-private subcode packed together:
// code = category*100 + subcode.
type Code uint16

// Make builds a code from its parts. Subcodes above 99 are truncated.
func Make(cat Category, sub uint8) Code {
	return Code(uint16(cat)*100 + uint16(sub%100))
}

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Input / configuration
	InputInfo                 Code = 100
	InputInvalidConfig        Code = 101
	InputNoFiles              Code = 102
	InputFileUnreadable       Code = 103
	InputSeqAnnotInWrapperSet Code = 104
	InputEmptyRecord          Code = 105

	// Master record synthesis
	MasterInfo                Code = 200
	MasterNoCommonOrganism    Code = 201
	MasterDifferentDBLinks    Code = 202
	MasterMissingDBLink       Code = 203
	MasterDifferentCreateDate Code = 204
	MasterMissingCreateDate   Code = 205
	MasterDifferentUpdateDate Code = 206
	MasterMissingUpdateDate   Code = 207
	MasterGPIDPresent         Code = 208
	MasterWritten             Code = 209
	MasterDifferentKeywords   Code = 210
	MasterNoRecords           Code = 211

	// Per-submission descriptor and consistency rules
	SubmissionInfo                   Code = 300
	SubmissionUnusualDescriptor      Code = 301
	SubmissionUnexpectedDescriptor   Code = 302
	SubmissionUnexpectedDate         Code = 303
	SubmissionTitleOnSet             Code = 304
	SubmissionUnexpectedUserObject   Code = 305
	SubmissionMultipleBioSources     Code = 306
	SubmissionMixedIDTypes           Code = 307
	SubmissionSecondaryAccsPresent   Code = 308
	SubmissionHistSecondaryDiffers   Code = 309
	SubmissionDifferentOrganism      Code = 310
	SubmissionDifferentDBLinkInEntry Code = 311

	// Parse
	ParseInfo        Code = 400
	ParseNotDocument Code = 401
	ParseEmptyFile   Code = 402
	ParseBadRecord   Code = 403

	// Output
	OutputInfo        Code = 500
	OutputWriteFailed Code = 501
	OutputSideFile    Code = 502

	// External services
	ServerInfo                Code = 600
	ServerTaxonomyUnavailable Code = 601
	ServerBiblioUnavailable   Code = 602

	// Organism / taxonomy
	OrganismInfo           Code = 700
	OrganismNotFound       Code = 701
	OrganismMissing        Code = 702
	OrganismNoChromosome   Code = 703
	OrganismLookupReplaced Code = 704

	// Sequence
	SeqInfo                    Code = 800
	SeqMultipleNucleotides     Code = 801
	SeqSegmentedSet            Code = 802
	SeqNoMolInfo               Code = 803
	SeqIncorrectBiomol         Code = 804
	SeqIncorrectTech           Code = 805
	SeqIncorrectMolType        Code = 806
	SeqGeneralLocalIdsDiffer   Code = 807
	SeqNoNucleotide            Code = 808
	SeqDbNameMismatch          Code = 809
	SeqMissingGeneralID        Code = 810
	SeqTooManyIDs              Code = 811
	SeqDbNameReplaced          Code = 812
	SeqMolFixed                Code = 813
	SeqNoSubmitterID           Code = 814

	// Accession
	AccInfo           Code = 900
	AccInvalid        Code = 901
	AccMissing        Code = 902
	AccDuplicateEntry Code = 903
	AccTooMany        Code = 904

	// Reference / publication
	RefInfo                 Code = 1000
	RefSubmissionDateForced Code = 1001
	RefPubNotFound          Code = 1002
)

var (
	codeName = map[Code]string{
		UnknownCode:                      "Unknown",
		InputInfo:                        "Info",
		InputInvalidConfig:               "InvalidConfig",
		InputNoFiles:                     "NoFiles",
		InputFileUnreadable:              "FileUnreadable",
		InputSeqAnnotInWrapperSet:        "SeqAnnotInWrapperSet",
		InputEmptyRecord:                 "EmptyRecord",
		MasterInfo:                       "Info",
		MasterNoCommonOrganism:           "NoCommonOrganism",
		MasterDifferentDBLinks:           "DifferentDBLinks",
		MasterMissingDBLink:              "MissingDBLink",
		MasterDifferentCreateDate:        "DifferentCreateDates",
		MasterMissingCreateDate:          "MissingCreateDate",
		MasterDifferentUpdateDate:        "DifferentUpdateDates",
		MasterMissingUpdateDate:          "MissingUpdateDate",
		MasterGPIDPresent:                "GPIDPresent",
		MasterWritten:                    "Written",
		MasterDifferentKeywords:          "DifferentKeywords",
		MasterNoRecords:                  "NoRecords",
		SubmissionInfo:                   "Info",
		SubmissionUnusualDescriptor:      "UnusualDescriptor",
		SubmissionUnexpectedDescriptor:   "UnexpectedDescriptor",
		SubmissionUnexpectedDate:         "UnexpectedDate",
		SubmissionTitleOnSet:             "TitleOnSet",
		SubmissionUnexpectedUserObject:   "UnexpectedUserObject",
		SubmissionMultipleBioSources:     "MultipleBioSources",
		SubmissionMixedIDTypes:           "MixedIdTypes",
		SubmissionSecondaryAccsPresent:   "SecondaryAccsPresent",
		SubmissionHistSecondaryDiffers:   "HistSecondaryDiffers",
		SubmissionDifferentOrganism:      "DifferentOrganism",
		SubmissionDifferentDBLinkInEntry: "DifferentDBLinkInEntry",
		ParseInfo:                        "Info",
		ParseNotDocument:                 "NotDocument",
		ParseEmptyFile:                   "EmptyFile",
		ParseBadRecord:                   "BadRecord",
		OutputInfo:                       "Info",
		OutputWriteFailed:                "WriteFailed",
		OutputSideFile:                   "SideFile",
		ServerInfo:                       "Info",
		ServerTaxonomyUnavailable:        "TaxonomyUnavailable",
		ServerBiblioUnavailable:          "BiblioUnavailable",
		OrganismInfo:                     "Info",
		OrganismNotFound:                 "NotFound",
		OrganismMissing:                  "Missing",
		OrganismNoChromosome:             "NoChromosome",
		OrganismLookupReplaced:           "LookupReplaced",
		SeqInfo:                          "Info",
		SeqMultipleNucleotides:           "MultipleNucleotides",
		SeqSegmentedSet:                  "SegmentedSet",
		SeqNoMolInfo:                     "NoMolInfo",
		SeqIncorrectBiomol:               "IncorrectBiomol",
		SeqIncorrectTech:                 "IncorrectTech",
		SeqIncorrectMolType:              "IncorrectMolType",
		SeqGeneralLocalIdsDiffer:         "GeneralLocalIdsDiffer",
		SeqNoNucleotide:                  "NoNucleotide",
		SeqDbNameMismatch:                "DbNameMismatch",
		SeqMissingGeneralID:              "MissingGeneralId",
		SeqTooManyIDs:                    "TooManyIds",
		SeqDbNameReplaced:                "DbNameReplaced",
		SeqMolFixed:                      "MolInfoFixed",
		SeqNoSubmitterID:                 "NoSubmitterId",
		AccInfo:                          "Info",
		AccInvalid:                       "Invalid",
		AccMissing:                       "Missing",
		AccDuplicateEntry:                "DuplicateEntry",
		AccTooMany:                       "TooMany",
		RefInfo:                          "Info",
		RefSubmissionDateForced:          "SubmissionDateForced",
		RefPubNotFound:                   "PubNotFound",
	}

	codeDescription = map[Code]string{
		UnknownCode:                      "Unknown diagnostic",
		InputInfo:                        "Input information",
		InputInvalidConfig:               "Invalid project configuration",
		InputNoFiles:                     "No input files found",
		InputFileUnreadable:              "Input file cannot be read",
		InputSeqAnnotInWrapperSet:        "Annotation attached to a wrapper set",
		InputEmptyRecord:                 "Record contains no sequences",
		MasterInfo:                       "Master record information",
		MasterNoCommonOrganism:           "Submissions do not share one organism",
		MasterDifferentDBLinks:           "DBLink user objects differ between submissions",
		MasterMissingDBLink:              "DBLink user object missing from a submission",
		MasterDifferentCreateDate:        "Create dates differ between submissions",
		MasterMissingCreateDate:          "Create date missing from a submission",
		MasterDifferentUpdateDate:        "Update dates differ between submissions",
		MasterMissingUpdateDate:          "Update date missing from a submission",
		MasterGPIDPresent:                "Legacy genome project id present",
		MasterWritten:                    "Master record written",
		MasterDifferentKeywords:          "Keywords differ between submissions",
		MasterNoRecords:                  "No records were accepted",
		SubmissionInfo:                   "Submission information",
		SubmissionUnusualDescriptor:      "Unusual descriptor on a set",
		SubmissionUnexpectedDescriptor:   "Unexpected descriptor dropped",
		SubmissionUnexpectedDate:         "Unexpected date descriptor dropped",
		SubmissionTitleOnSet:             "Title descriptor on a set",
		SubmissionUnexpectedUserObject:   "Unexpected user object dropped",
		SubmissionMultipleBioSources:     "More than one top-level BioSource",
		SubmissionMixedIDTypes:           "Submissions use different identifier types",
		SubmissionSecondaryAccsPresent:   "Secondary accessions are not allowed",
		SubmissionHistSecondaryDiffers:   "Secondary accessions differ from replaced-by history",
		SubmissionDifferentOrganism:      "Organism differs from earlier submissions",
		SubmissionDifferentDBLinkInEntry: "Different DBLink user objects within one record",
		ParseInfo:                        "Parse information",
		ParseNotDocument:                 "Input is not a record stream",
		ParseEmptyFile:                   "Input file contains no records",
		ParseBadRecord:                   "Record cannot be decoded",
		OutputInfo:                       "Output information",
		OutputWriteFailed:                "Output file cannot be written",
		OutputSideFile:                   "Side output file cannot be written",
		ServerInfo:                       "Server information",
		ServerTaxonomyUnavailable:        "Taxonomy lookup unavailable",
		ServerBiblioUnavailable:          "Bibliographic lookup unavailable",
		OrganismInfo:                     "Organism information",
		OrganismNotFound:                 "Organism not found in taxonomy",
		OrganismMissing:                  "Record has no BioSource",
		OrganismNoChromosome:             "Chromosome subtype missing",
		OrganismLookupReplaced:           "Organism replaced by taxonomy lookup",
		SeqInfo:                          "Sequence information",
		SeqMultipleNucleotides:           "More than one nucleotide sequence in a record",
		SeqSegmentedSet:                  "Nested segmented set",
		SeqNoMolInfo:                     "MolInfo descriptor missing",
		SeqIncorrectBiomol:               "incorrect Molinfo.biomol",
		SeqIncorrectTech:                 "incorrect Molinfo.tech",
		SeqIncorrectMolType:              "incorrect molecule type",
		SeqGeneralLocalIdsDiffer:         "general/local ids differ",
		SeqNoNucleotide:                  "Record has no nucleotide sequence",
		SeqDbNameMismatch:                "General id database name does not match the project",
		SeqMissingGeneralID:              "General id required but missing",
		SeqTooManyIDs:                    "More than one local or general id",
		SeqDbNameReplaced:                "General id database name replaced",
		SeqMolFixed:                      "MolInfo corrected",
		SeqNoSubmitterID:                 "Sequence has no local or general id",
		AccInfo:                          "Accession information",
		AccInvalid:                       "Invalid accession",
		AccMissing:                       "Accession missing",
		AccDuplicateEntry:                "Sequence id seen more than once",
		AccTooMany:                       "Too many sequences for the accession range",
		RefInfo:                          "Reference information",
		RefSubmissionDateForced:          "Cit-sub date replaced",
		RefPubNotFound:                   "Publication not found",
	}
)

// Category returns the pipeline stage owning this code.
func (c Code) Category() Category { return Category(uint16(c) / 100) }

// Subcode returns the category-private part of the code.
func (c Code) Subcode() uint8 { return uint8(uint16(c) % 100) }

// ID renders ERR_<CATEGORY>_<Name>. Codes without a registered name fall back
// to the numeric subcode so undocumented codes stay printable.
func (c Code) ID() string {
	if name, ok := codeName[c]; ok && c != UnknownCode {
		return fmt.Sprintf("ERR_%s_%s", c.Category(), name)
	}
	return fmt.Sprintf("ERR_%s_%d", c.Category(), c.Subcode())
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
