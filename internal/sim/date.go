package sim

import "fmt"

const WeeksPerYear = 52

// GameDate is the simulation cursor: week 1..52 inside a year. It is a value
// type; every mutation returns a new date. Total order comes from Index.
type GameDate struct {
	Week int `json:"week"`
	Year int `json:"year"`
}

func NewGameDate(week, year int) (GameDate, error) {
	if week < 1 || week > WeeksPerYear {
		return GameDate{}, fmt.Errorf("week must be 1..%d, got %d", WeeksPerYear, week)
	}
	return GameDate{Week: week, Year: year}, nil
}

// inCalendar reports whether the date lies in the week domain. Dates built
// through NewGameDate always do; dates decoded from the wire may not.
func (d GameDate) inCalendar() bool {
	return d.Week >= 1 && d.Week <= WeeksPerYear
}

// Index maps the date onto a single monotonically increasing axis.
func (d GameDate) Index() int {
	return d.Year*WeeksPerYear + (d.Week - 1)
}

func (d GameDate) AddWeeks(n int) GameDate {
	idx := d.Index() + n
	return GameDate{Week: idx%WeeksPerYear + 1, Year: idx / WeeksPerYear}
}

// Next advances by exactly one week, rolling week 52 into week 1 of the next
// year. The clock never moves backward; this is the only step size.
func (d GameDate) Next() GameDate {
	return d.AddWeeks(1)
}

func (d GameDate) Before(o GameDate) bool { return d.Index() < o.Index() }

func (d GameDate) After(o GameDate) bool { return d.Index() > o.Index() }

func (d GameDate) Equal(o GameDate) bool { return d.Index() == o.Index() }

func (d GameDate) IsZero() bool { return d.Week == 0 && d.Year == 0 }

func (d GameDate) String() string {
	return fmt.Sprintf("W%02d/%d", d.Week, d.Year)
}
