package resource

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"alpha_miner/configs"
	"alpha_miner/internal/brain"
	"alpha_miner/internal/constant"
	"alpha_miner/internal/viewer"
)

// Fetcher assembles the reference data the UI needs. Each sub-fetch degrades
// on its own: one failing call never aborts the other two.
type Fetcher struct {
	query         brain.DatasetQuery
	operatorsFile string
	cache         *ttlCache
}

func NewFetcher() *Fetcher {
	conf := configs.GetGlobalConfig().ResourceConfig
	return &Fetcher{
		query: brain.DatasetQuery{
			InstrumentType: conf.InstrumentType,
			Region:         conf.Region,
			Delay:          conf.Delay,
			Universe:       conf.Universe,
		},
		operatorsFile: conf.OperatorsFile,
		cache:         newTTLCache(time.Duration(conf.CacheTTLSecond) * time.Second),
	}
}

// Fetch returns datasets, operators, profile flags and the static lists.
// Results are served from the TTL cache when one is configured.
func (f *Fetcher) Fetch(client *brain.Client) viewer.Resources {
	if cached, ok := f.cache.Get(); ok {
		return *cached
	}

	resources := viewer.Resources{
		Datasets:    f.fetchDatasets(client),
		Operators:   f.fetchOperators(),
		UserProfile: f.fetchProfile(client),
		Instruments: []string{"EQUITY", "FUTURES"},
		Regions:     []string{"USA", "CHN", "EUR", "JPN", "GLB"},
		Delays:      []int64{0, 1},
	}

	f.cache.Put(&resources)
	return resources
}

// fetchDatasets concatenates the theme=false and theme=true listings, capped
// at the first 50 entries.
func (f *Fetcher) fetchDatasets(client *brain.Client) []json.RawMessage {
	plain, err := client.GetDatasets(f.query, false)
	if err != nil {
		log.Errorf("fetch datasets theme=false Failed {%s}", err.Error())
		plain = nil
	}
	themed, err := client.GetDatasets(f.query, true)
	if err != nil {
		log.Errorf("fetch datasets theme=true Failed {%s}", err.Error())
		themed = nil
	}

	allDatasets := make([]json.RawMessage, 0, len(plain)+len(themed))
	allDatasets = append(allDatasets, plain...)
	allDatasets = append(allDatasets, themed...)
	if len(allDatasets) > constant.DatasetLimit {
		allDatasets = allDatasets[:constant.DatasetLimit]
	}
	return allDatasets
}

func (f *Fetcher) fetchOperators() []viewer.Operator {
	operators, err := ReadOperators(f.operatorsFile)
	if err != nil {
		log.Errorf("read operators Failed {%s}", err.Error())
		return []viewer.Operator{}
	}
	return operators
}

func (f *Fetcher) fetchProfile(client *brain.Client) viewer.Profile {
	profile, err := client.GetUserProfile()
	if err != nil {
		log.Errorf("fetch user profile Failed {%s}", err.Error())
		return viewer.Profile{CanSubmitRegular: true, CanSubmitPowerPool: false}
	}
	return profile
}
