package repository

import (
	"cinebook/internal/database"
	"cinebook/internal/search"
)

type Repositories struct {
	Movies    *MovieRepository
	Showtimes *ShowtimeRepository
	Bookings  *BookingRepository
	Parking   *ParkingRepository
	Support   *SupportRepository
}

func NewRepositories(db *database.DB, es *search.Client) *Repositories {
	return &Repositories{
		Movies:    NewMovieRepository(es),
		Showtimes: NewShowtimeRepository(db),
		Bookings:  NewBookingRepository(db),
		Parking:   NewParkingRepository(db),
		Support:   NewSupportRepository(db),
	}
}
