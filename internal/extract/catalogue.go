package extract

// Field names of the default catalogue
const (
	FieldHolderName       = "holder_name"
	FieldFatherMotherName = "father_mother_name"
	FieldDependents       = "dependents"
	FieldAddress          = "address"
	FieldVillageGram      = "village_gram"
	FieldGramPanchayat    = "gram_panchayat"
	FieldTehsil           = "tehsil"
	FieldDistrict         = "district"
	FieldCasteCategory    = "caste_category"
	FieldArea             = "area"
	FieldBoundaries       = "boundaries"
	FieldKhasraNumber     = "khasra_number"
)

// Value tails shared by most single line fields. RE2 has no lookahead, so the
// terminating keyword is matched (and discarded) instead of peeked at.
const (
	lineValue      = `([a-z\s\.]+?)(?:\n|$)`
	multiLineNames = `([a-z\s\.,\n]+?)(?:address|village|$)`
	addressValue   = `([a-z0-9\s\.,\-\n]+?)(?:village|gram|tehsil|district|$)`
	areaValue      = `([0-9\-\.\s]+?)(?:bighas|acres|hectares|\n|$)`
	boundaryValue  = `([a-z0-9\s\.,\-\n/]+?)(?:this\s*title|$)`
	numberValue    = `([0-9/\-\s\.]+?)(?:\n|$)`
)

var defaultCatalogue = Catalogue{
	{
		Name: FieldHolderName,
		Kind: KindName,
		Rules: []Rule{
			KeywordPattern("holder", `name\s*\(s\)\s*of\s*holder\s*\(s\).*?`+lineValue),
			KeywordPattern("holder", `name\s*of\s*holder.*?`+lineValue),
			KeywordPattern("holder", `holder.*?name.*?`+lineValue),
			Pattern(`श्री\s*` + lineValue),
			KeywordPattern("s/o", `name.*?([a-z\s\.]+?)s/o`),
		},
	},
	{
		Name: FieldFatherMotherName,
		Kind: KindName,
		Rules: []Rule{
			Pattern(`name\s*of\s*father/mother.*?` + lineValue),
			KeywordPattern("father", `father.*?name.*?`+lineValue),
			KeywordPattern("mother", `mother.*?name.*?`+lineValue),
			Pattern(`s/o\s*` + lineValue),
			Pattern(`w/o\s*` + lineValue),
			Pattern(`d/o\s*` + lineValue),
		},
	},
	{
		Name: FieldDependents,
		Kind: KindText,
		Rules: []Rule{
			Pattern(`name\s*of\s*dependents.*?` + multiLineNames),
			KeywordPattern("dependents", `dependents.*?`+multiLineNames),
		},
	},
	{
		Name: FieldAddress,
		Kind: KindText,
		Rules: []Rule{
			KeywordPattern("address", `address.*?`+addressValue),
			Pattern(`पता.*?` + addressValue),
		},
	},
	{
		Name: FieldVillageGram,
		Kind: KindLocation,
		Rules: []Rule{
			Pattern(`village/gram\s*sabha.*?` + lineValue),
			KeywordPattern("village", `village.*?`+lineValue),
			KeywordPattern("gram", `gram.*?`+lineValue),
			Pattern(`गांव.*?` + lineValue),
		},
	},
	{
		Name: FieldGramPanchayat,
		Kind: KindText,
		Rules: []Rule{
			Pattern(`gram\s*panchayat.*?` + lineValue),
			KeywordPattern("panchayat", `panchayat.*?`+lineValue),
		},
	},
	{
		Name: FieldTehsil,
		Kind: KindLocation,
		Rules: []Rule{
			Pattern(`tehsil/taluka.*?` + lineValue),
			KeywordPattern("tehsil", `tehsil.*?`+lineValue),
			KeywordPattern("taluka", `taluka.*?`+lineValue),
			KeywordPattern("block", `block.*?`+lineValue),
			Pattern(`तहसील.*?` + lineValue),
		},
	},
	{
		Name: FieldDistrict,
		Kind: KindLocation,
		Rules: []Rule{
			KeywordPattern("district", `district.*?`+lineValue),
			Pattern(`जिला.*?` + lineValue),
			KeywordPattern("dist", `dist.*?`+lineValue),
		},
	},
	{
		Name: FieldCasteCategory,
		Kind: KindText,
		Rules: []Rule{
			Pattern(`whether\s*scheduled\s*tribe.*?` + lineValue),
			KeywordPattern("sc/st", `sc/st.*?`+lineValue),
			KeywordPattern("caste", `caste.*?`+lineValue),
			KeywordPattern("category", `category.*?`+lineValue),
		},
	},
	{
		Name: FieldArea,
		Kind: KindArea,
		Rules: []Rule{
			KeywordPattern("area", `area.*?`+areaValue),
			Pattern(`क्षेत्रफल.*?` + areaValue),
		},
	},
	{
		Name: FieldBoundaries,
		Kind: KindText,
		Rules: []Rule{
			Pattern(`description\s*of\s*boundaries.*?` + boundaryValue),
			KeywordPattern("boundaries", `boundaries.*?`+boundaryValue),
		},
	},
	{
		Name: FieldKhasraNumber,
		Kind: KindNumber,
		Rules: []Rule{
			Pattern(`khasra\s*no.*?` + numberValue),
			Pattern(`survey\s*no.*?` + numberValue),
		},
	},
}

// DefaultCatalogue returns the field catalogue for FRA title documents.
func DefaultCatalogue() Catalogue {
	return defaultCatalogue
}
