package term

// Namespaces of the built-in catalog.
const (
	DwC            = "http://rs.tdwg.org/dwc/terms/"
	DC             = "http://purl.org/dc/terms/"
	GBIF           = "http://rs.gbif.org/terms/1.0/"
	GBIFVocabulary = "http://rs.gbif.org/vocabulary/"
)

// Row types of the built-in catalog.
const (
	RowTaxon                = DwC + "Taxon"
	RowOccurrence           = DwC + "Occurrence"
	RowEvent                = DwC + "Event"
	RowMeasurementOrFact    = DwC + "MeasurementOrFact"
	RowResourceRelationship = DwC + "ResourceRelationship"
	RowIdentification       = DwC + "Identification"
	RowVernacularName       = GBIF + "VernacularName"
	RowDistribution         = GBIF + "Distribution"
	RowReference            = GBIF + "Reference"
	RowMultimedia           = GBIF + "Multimedia"
	RowSpeciesProfile       = GBIF + "SpeciesProfile"
	RowDescription          = GBIF + "Description"
	RowIdentifier           = GBIF + "Identifier"
)

// Controlled vocabularies of the built-in catalog.
const (
	VocabBasisOfRecord     = GBIFVocabulary + "dwc/basis_of_record"
	VocabOccurrenceStatus  = GBIFVocabulary + "gbif/occurrence_status"
	VocabNomenclaturalCode = GBIFVocabulary + "gbif/nomenclatural_code"
)

// DefaultCatalog returns the built-in catalog of Darwin Core, Dublin Core and
// GBIF extension terms.
func DefaultCatalog() Catalog {
	return Catalog{
		RowTypes: []RowTypeSpec{
			{URI: RowTaxon, IDTerm: DwC + "taxonID"},
			{URI: RowOccurrence, IDTerm: DwC + "occurrenceID"},
			{URI: RowEvent, IDTerm: DwC + "eventID"},
			{URI: RowMeasurementOrFact, IDTerm: DwC + "measurementID"},
			{URI: RowResourceRelationship, IDTerm: DwC + "resourceRelationshipID"},
			{URI: RowIdentification, IDTerm: DwC + "identificationID"},
			{URI: RowVernacularName},
			{URI: RowDistribution},
			{URI: RowReference},
			{URI: RowMultimedia},
			{URI: RowSpeciesProfile},
			{URI: RowDescription},
			{URI: RowIdentifier},
		},
		Terms:        catalogTerms(),
		Vocabularies: catalogVocabularies(),
	}
}

func catalogTerms() []Spec {
	var specs []Spec
	add := func(ns string, t TypeTag, names ...string) {
		for _, n := range names {
			specs = append(specs, Spec{URI: ns + n, Type: t})
		}
	}

	// Record-level terms.
	add(DC, String, "type", "license", "rightsHolder", "accessRights", "bibliographicCitation",
		"references", "language", "source", "identifier", "title", "creator", "description",
		"publisher", "format", "audience", "contributor", "subject", "rights")
	add(DC, DateTime, "modified", "created")
	add(DC, DateTimeInterval, "date")
	add(DwC, String, "institutionID", "collectionID", "datasetID", "institutionCode",
		"collectionCode", "datasetName", "ownerInstitutionCode", "informationWithheld",
		"dataGeneralizations")

	// Occurrence.
	add(DwC, String, "occurrenceID", "catalogNumber", "recordNumber", "sex", "lifeStage",
		"reproductiveCondition", "behavior", "establishmentMeans", "degreeOfEstablishment",
		"pathway", "georeferenceVerificationStatus", "occurrenceRemarks", "disposition",
		"organismID", "organismName", "organismQuantityType", "materialSampleID")
	add(DwC, StringList, "recordedBy", "recordedByID", "preparations", "associatedMedia",
		"associatedReferences", "associatedSequences", "associatedTaxa", "otherCatalogNumbers",
		"associatedOccurrences", "higherClassification", "identifiedBy", "identifiedByID",
		"typeStatus", "higherGeography")
	add(DwC, Integer, "individualCount", "year", "month", "day", "startDayOfYear",
		"endDayOfYear", "namePublishedInYear")
	add(DwC, Float, "organismQuantity", "sampleSizeValue", "minimumElevationInMeters",
		"maximumElevationInMeters", "minimumDepthInMeters", "maximumDepthInMeters",
		"coordinateUncertaintyInMeters", "minimumDistanceAboveSurfaceInMeters",
		"maximumDistanceAboveSurfaceInMeters")
	add(DwC, Decimal, "decimalLatitude", "decimalLongitude", "coordinatePrecision", "pointRadiusSpatialFit")
	specs = append(specs,
		Spec{URI: DwC + "basisOfRecord", Type: Vocabulary, Vocabulary: VocabBasisOfRecord},
		Spec{URI: DwC + "occurrenceStatus", Type: Vocabulary, Vocabulary: VocabOccurrenceStatus},
	)

	// Event.
	add(DwC, String, "eventID", "parentEventID", "fieldNumber", "verbatimEventDate", "habitat",
		"samplingProtocol", "sampleSizeUnit", "samplingEffort", "fieldNotes", "eventRemarks")
	add(DwC, DateTimeInterval, "eventDate")
	add(DwC, StringPair, "eventTime")

	// Location.
	add(DwC, String, "locationID", "higherGeographyID", "continent", "waterBody", "islandGroup",
		"island", "country", "countryCode", "stateProvince", "county", "municipality",
		"locality", "verbatimLocality", "verbatimElevation", "verbatimDepth",
		"locationAccordingTo", "locationRemarks", "geodeticDatum", "verbatimCoordinates",
		"verbatimLatitude", "verbatimLongitude", "verbatimCoordinateSystem", "verbatimSRS",
		"footprintWKT", "footprintSRS", "georeferencedBy", "georeferenceProtocol",
		"georeferenceSources", "georeferenceRemarks")
	add(DwC, DateTime, "georeferencedDate")

	// Identification.
	add(DwC, String, "identificationID", "identificationQualifier", "identificationReferences",
		"identificationVerificationStatus", "identificationRemarks")
	add(DwC, DateTime, "dateIdentified")

	// Taxon.
	add(DwC, String, "taxonID", "scientificNameID", "acceptedNameUsageID", "parentNameUsageID",
		"originalNameUsageID", "nameAccordingToID", "namePublishedInID", "taxonConceptID",
		"scientificName", "acceptedNameUsage", "parentNameUsage", "originalNameUsage",
		"nameAccordingTo", "namePublishedIn", "kingdom", "phylum", "class", "order",
		"superfamily", "family", "subfamily", "tribe", "subtribe", "genus", "genericName",
		"subgenus", "infragenericEpithet", "specificEpithet", "infraspecificEpithet",
		"cultivarEpithet", "taxonRank", "verbatimTaxonRank", "scientificNameAuthorship",
		"vernacularName", "nomenclaturalStatus", "taxonRemarks")
	specs = append(specs,
		Spec{URI: DwC + "nomenclaturalCode", Type: Vocabulary, Vocabulary: VocabNomenclaturalCode},
		Spec{URI: DwC + "taxonomicStatus", Type: String},
	)

	// MeasurementOrFact and ResourceRelationship.
	add(DwC, String, "measurementID", "parentMeasurementID", "measurementType",
		"measurementValue", "measurementAccuracy", "measurementUnit", "measurementDeterminedBy",
		"measurementMethod", "measurementRemarks", "resourceRelationshipID", "resourceID",
		"relationshipOfResourceID", "relatedResourceID", "relationshipOfResource",
		"relationshipAccordingTo", "relationshipRemarks")
	add(DwC, DateTime, "measurementDeterminedDate", "relationshipEstablishedDate")

	// GBIF extensions.
	add(GBIF, Boolean, "isPreferredName", "isPlural", "isMarine", "isFreshwater",
		"isTerrestrial", "isInvasive", "isHybrid", "isExtinct")
	add(GBIF, String, "livingPeriod", "ageInDays", "sizeInMillimeters", "massInGrams",
		"lifeForm", "habitat", "threatStatus", "appendixCITES", "organismPart")

	return specs
}

func catalogVocabularies() map[string][]string {
	return map[string][]string{
		VocabBasisOfRecord: {
			"PreservedSpecimen", "FossilSpecimen", "LivingSpecimen", "MaterialSample",
			"MaterialCitation", "HumanObservation", "MachineObservation", "Occurrence",
			"Event", "Taxon",
		},
		VocabOccurrenceStatus: {"present", "absent"},
		VocabNomenclaturalCode: {
			"ICZN", "ICN", "ICNP", "ICTV", "ICNCP", "BioCode",
		},
	}
}
