package session

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"funnelforge/internal/catalog"
	"funnelforge/internal/rng"
)

// Persona is the stable synthetic person behind a device: the identity
// minted on form fill plus the envelope attributes (device, geo)
// stamped onto every event. Derived once per device from the run seed,
// so the same device always resolves to the same person.
type Persona struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Company   string
	Phone     string

	Device catalog.Device
	Geo    catalog.Geo

	City     string
	Region   string
	IP       string
	Lat      float64
	Lng      float64
	Language string
}

// freeMailShare is the fraction of identified users on personal email
// domains rather than a company domain.
const freeMailShare = 0.30

var freeMailDomains = []string{"gmail.com", "outlook.com", "yahoo.com"}

func personaFor(rngs rng.Factory, deviceID string) Persona {
	f := gofakeit.New(rngs.HashKey("persona", deviceID))
	r := rand.New(rand.NewSource(int64(rngs.HashKey("persona-env", deviceID) >> 1)))

	first := f.FirstName()
	last := f.LastName()
	company := f.Company()

	domain := companyDomain(company)
	if r.Float64() < freeMailShare {
		domain = freeMailDomains[r.Intn(len(freeMailDomains))]
	}

	return Persona{
		UserID:    fmt.Sprintf("usr_%012x", rngs.HashKey("uid", deviceID)&0xffffffffffff),
		Email:     strings.ToLower(first+"."+last) + "@" + domain,
		FirstName: first,
		LastName:  last,
		Company:   company,
		Phone:     f.Phone(),

		Device: catalog.Devices[r.Intn(len(catalog.Devices))],
		Geo:    catalog.SelectGeo(r),

		City:     f.City(),
		Region:   f.StateAbr(),
		IP:       f.IPv4Address(),
		Lat:      f.Latitude(),
		Lng:      f.Longitude(),
		Language: "English",
	}
}

// companyDomain slugs a company name into a plausible web domain.
func companyDomain(company string) string {
	s := strings.ToLower(company)
	var b strings.Builder
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	slug := b.String()
	if slug == "" {
		slug = "example"
	}
	return slug + ".com"
}
