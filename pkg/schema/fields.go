package schema

// Column names of the record store, per table.
const (
	FieldOrgName         = "Name"
	FieldOrgRoles        = "Role"
	FieldOrgEntityType   = "Entity Type"
	FieldOrgCity         = "City"
	FieldOrgStates       = "State"
	FieldOrgCountries    = "Country"
	FieldOrgPeople       = "People"
	FieldOrgAffiliations = "Affiliated Organizations"
)

const (
	FieldWorldviewName               = "Name"
	FieldWorldviewShortName          = "Short Name"
	FieldWorldviewColor              = "Color"
	FieldWorldviewCluster            = "Cluster"
	FieldWorldviewClusterDescription = "Cluster Description"
	FieldWorldviewTagline            = "Tagline"
	FieldWorldviewDescription        = "Description"
	FieldWorldviewVision             = "Vision"
	FieldWorldviewApproach           = "Approach"
	FieldWorldviewStrengths          = "Strengths"
	FieldWorldviewTensions           = "Tensions"
	FieldWorldviewAllies             = "Allies"
	FieldWorldviewExamples           = "Example Organizations"
)

const (
	FieldOutcomeID                = "ID"
	FieldOutcomeName              = "Name"
	FieldOutcomeShortDescription  = "Short Description"
	FieldOutcomeLongDescription   = "Long Description"
	FieldOutcomeSuccessIndicators = "Success Indicators"
)

const (
	FieldRelevanceOutcome   = "Outcome"
	FieldRelevanceWorldview = "Worldview"
	FieldRelevanceLevel     = "Relevance"
)

const (
	FieldCategoryName = "Name"
)

const (
	FieldProblemID               = "ID"
	FieldProblemName             = "Name"
	FieldProblemDescription      = "Description"
	FieldProblemCategory         = "Category"
	FieldProblemAffectedOutcomes = "Affected Outcomes"
)

const (
	FieldProjectName          = "Name"
	FieldProjectDescription   = "Description"
	FieldProjectStatus        = "Status"
	FieldProjectOrganizations = "Organizations"
	FieldProjectProblems      = "Problems Addressed"
	FieldProjectGeography     = "Geography"
	FieldProjectFunding       = "Funding"
	FieldProjectWebsite       = "Website"
)
