package matching

// relatedSpecialties is a hand-authored adjacency table of clinically
// adjacent specialties. It is directed: A listing B does not imply B lists A.
var relatedSpecialties = map[Specialty][]Specialty{
	SpecialtySportsRehabilitation: {SpecialtyOrthopedic, SpecialtyManualTherapy},
	SpecialtyOrthopedic:           {SpecialtySportsRehabilitation, SpecialtyManualTherapy, SpecialtyPostOperative},
	SpecialtyNeurological:         {SpecialtyVestibular, SpecialtyGeriatric},
	SpecialtyPediatric:            {},
	SpecialtyGeriatric:            {SpecialtyNeurological, SpecialtyChronicPain},
	SpecialtyPostOperative:        {SpecialtyOrthopedic, SpecialtyManualTherapy},
	SpecialtyChronicPain:          {SpecialtyManualTherapy, SpecialtyGeriatric},
	SpecialtyManualTherapy:        {SpecialtyOrthopedic, SpecialtyChronicPain, SpecialtySportsRehabilitation},
	SpecialtyAquaticTherapy:       {SpecialtyOrthopedic, SpecialtyGeriatric},
	SpecialtyVestibular:           {SpecialtyNeurological},
	SpecialtyWomensHealth:         {},
	SpecialtyCardiopulmonary:      {},
}

// RelatedSpecialties returns the adjacent specialties for the given
// specialty, or nil when none are defined.
func RelatedSpecialties(s Specialty) []Specialty {
	return relatedSpecialties[s]
}
