package validate

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/glowheal/catalog/internal/catalog"
	"github.com/glowheal/catalog/internal/model"
)

// The raw shapes keep fields whose JSON type is itself under test as
// json.RawMessage so a bad price or missing array is reported, not fatal.

type rawItem struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Price    json.RawMessage `json:"price"`
	Unit     string          `json:"unit"`
	Includes json.RawMessage `json:"includes"`
	Excludes json.RawMessage `json:"excludes"`
}

type rawPackage struct {
	rawItem
	BundledItems    []string        `json:"bundledItems"`
	StandaloneTotal json.RawMessage `json:"standaloneTotal"`
	Savings         json.RawMessage `json:"savings"`
}

type rawSpecialty struct {
	Slug  string    `json:"slug"`
	Title string    `json:"title"`
	Items []rawItem `json:"items"`
}

type rawCatalog struct {
	CitySlug    string `json:"citySlug"`
	Teleconsult *struct {
		FirstConsult json.RawMessage `json:"first_consult"`
	} `json:"teleconsult"`
	Specialties []rawSpecialty  `json:"specialties"`
	Packages    []rawPackage    `json:"packages"`
	Disclaimers json.RawMessage `json:"disclaimers"`
}

type rawAddon struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Price json.RawMessage `json:"price"`
}

// cityState is threaded through the item checks of one document.
type cityState struct {
	codes           map[string]bool
	prices          map[string]int
	hasPlaceholders bool
}

func checkCatalog(res *cityResult, b []byte) error {
	var doc rawCatalog
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}

	if doc.CitySlug != string(res.city) {
		res.errorf("City slug mismatch: expected %s, got %s", res.city, doc.CitySlug)
	}
	if doc.Teleconsult == nil {
		res.errorf("First consultation must be free (0): teleconsult missing")
	} else if v, ok := number(doc.Teleconsult.FirstConsult); !ok || v != 0 {
		res.errorf("First consultation must be free (0)")
	}

	st := &cityState{codes: make(map[string]bool), prices: make(map[string]int)}

	for _, sp := range doc.Specialties {
		if sp.Slug == "" || sp.Title == "" {
			b, _ := json.Marshal(sp)
			res.errorf("Specialty missing slug or title: %s", b)
			continue
		}
		if !KnownSpecialties[sp.Slug] {
			res.warnf("Specialty %q not in known specialties list. May need mapping in Services/Doctors pages.", sp.Slug)
		}
		res.infof("  %s (%d items)", sp.Title, len(sp.Items))

		for _, it := range sp.Items {
			checkItem(res, st, it)
		}
	}

	for _, p := range doc.Packages {
		if checkItem(res, st, p.rawItem) {
			checkPackage(res, st, p)
		}
	}

	disclaimers, ok := stringList(doc.Disclaimers)
	if ok {
		for _, d := range disclaimers {
			if catalog.HasPlaceholderText(d) {
				st.hasPlaceholders = true
				res.warnf("Disclaimer contains TODO marker")
			}
		}
	}
	if st.hasPlaceholders {
		res.warnf("Catalog contains placeholders - NOT READY FOR PRODUCTION")
	}
	if !ok || len(disclaimers) == 0 {
		res.warnf("No disclaimers found")
	}

	res.infof("  %d unique items validated", len(st.codes))
	return nil
}

// checkItem validates one item and records its code. It returns false when
// required fields are missing and the item was skipped.
func checkItem(res *cityResult, st *cityState, it rawItem) bool {
	if it.Code == "" || it.Name == "" || !present(it.Price) {
		b, _ := json.Marshal(it)
		res.errorf("Item missing required fields: %s", b)
		return false
	}

	if strings.HasPrefix(it.Code, catalog.PlaceholderCodePrefix) || catalog.HasPlaceholderText(it.Name) {
		st.hasPlaceholders = true
		res.warnf("Placeholder detected: %s", it.Code)
	}

	if st.codes[it.Code] {
		res.errorf("Duplicate code within city: %s", it.Code)
	}
	st.codes[it.Code] = true
	res.codes = append(res.codes, it.Code)

	price, ok := number(it.Price)
	switch {
	case !ok:
		res.errorf("%s has non-numeric price: %s", it.Code, it.Price)
	case price != math.Trunc(price):
		res.errorf("%s has non-integer price: %s", it.Code, it.Price)
	case price < 0:
		res.errorf("%s has negative price: %s", it.Code, it.Price)
	default:
		st.prices[it.Code] = int(price)
		if price == 0 && !st.hasPlaceholders {
			res.warnf("%s has zero price (may be intentional for free items)", it.Code)
		}
	}

	if !model.ValidUnits[it.Unit] {
		res.errorf("%s has invalid unit: %s (must be one of: %s)",
			it.Code, it.Unit, strings.Join(model.UnitNames, ", "))
	}

	includes, ok := stringList(it.Includes)
	switch {
	case !ok:
		res.errorf("%s missing includes array", it.Code)
	case len(includes) == 0:
		res.warnf("%s has empty includes array", it.Code)
	default:
		if anyPlaceholder(includes) {
			st.hasPlaceholders = true
		}
	}

	excludes, ok := stringList(it.Excludes)
	switch {
	case !ok:
		res.errorf("%s missing excludes array", it.Code)
	case len(excludes) == 0:
		res.infof("    %s has no exclusions (intentional)", it.Code)
	default:
		if anyPlaceholder(excludes) {
			st.hasPlaceholders = true
		}
	}
	return true
}

func checkPackage(res *cityResult, st *cityState, p rawPackage) {
	price, priceOK := number(p.Price)
	total, totalOK := number(p.StandaloneTotal)
	savings, savingsOK := number(p.Savings)
	if !totalOK || !savingsOK {
		res.errorf("%s package missing standaloneTotal or savings", p.Code)
		return
	}
	if savings < 0 {
		res.errorf("%s package has negative savings: %s", p.Code, p.Savings)
	}
	if priceOK && price+savings != total {
		res.errorf("%s package price %s + savings %s != standaloneTotal %s",
			p.Code, p.Price, p.Savings, p.StandaloneTotal)
	}

	if len(p.BundledItems) == 0 {
		res.errorf("%s package bundles no items", p.Code)
		return
	}
	sum := 0
	complete := true
	for _, code := range p.BundledItems {
		itemPrice, ok := st.prices[code]
		if !ok {
			res.errorf("%s package bundles unknown item: %s", p.Code, code)
			complete = false
			continue
		}
		sum += itemPrice
	}
	if complete && float64(sum) != total {
		res.errorf("%s package standaloneTotal %s != sum of bundled prices %d",
			p.Code, p.StandaloneTotal, sum)
	}
}

func checkAddons(res *cityResult, b []byte) error {
	var raw json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var addons []rawAddon
	if err := json.Unmarshal(raw, &addons); err != nil {
		res.errorf("Add-ons must be an array")
		return nil
	}

	codes := make(map[string]bool)
	for _, a := range addons {
		if a.Code == "" || a.Name == "" || !present(a.Price) {
			b, _ := json.Marshal(a)
			res.errorf("Add-on missing required fields: %s", b)
			continue
		}
		if codes[a.Code] {
			res.errorf("Duplicate add-on code: %s", a.Code)
		}
		codes[a.Code] = true

		price, ok := number(a.Price)
		switch {
		case !ok:
			res.errorf("Non-numeric price for add-on %s: %s", a.Code, a.Price)
		case price < 0:
			res.errorf("Negative price for add-on %s: %s", a.Code, a.Price)
		}
	}
	res.infof("  %d unique add-ons validated", len(codes))
	return nil
}

func number(raw json.RawMessage) (float64, bool) {
	if !present(raw) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

func stringList(raw json.RawMessage) ([]string, bool) {
	if !present(raw) {
		return nil, false
	}
	var l []string
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, false
	}
	return l, true
}

func anyPlaceholder(l []string) bool {
	for _, s := range l {
		if catalog.HasPlaceholderText(s) {
			return true
		}
	}
	return false
}
