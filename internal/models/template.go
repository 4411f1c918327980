package models

import "fmt"

// Hall seat template: rows A..K, 10 seats per row (110 seats).
var SeatRows = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}

const SeatsPerRow = 10

// DefaultSeatPrice is the per-seat ticket price in cents (LKR 500).
const DefaultSeatPrice int64 = 50000

// Parking pool template: two sides, fixed slots per side, per vehicle type.
var ParkingSides = []string{"L", "R"}

const SlotsPerSide = 15

// DefaultParkingFee is the flat parking fee in cents (LKR 300).
const DefaultParkingFee int64 = 30000

// SeatTemplate returns the full ordered list of seat numbers for a hall,
// "A1" through "K10".
func SeatTemplate() []string {
	seats := make([]string, 0, len(SeatRows)*SeatsPerRow)
	for _, row := range SeatRows {
		for col := 1; col <= SeatsPerRow; col++ {
			seats = append(seats, fmt.Sprintf("%s%d", row, col))
		}
	}
	return seats
}

// SlotNumber builds the deterministic slot identifier for a pool position,
// e.g. SlotNumber("CAR", "L", 7) == "L-C7".
func SlotNumber(vehicleType, side string, index int) string {
	return fmt.Sprintf("%s-%s%d", side, VehicleTypeInitial(vehicleType), index)
}

// SlotTemplate returns every slot number in a vehicle type's pool, in
// enumeration order (all left-side slots, then all right-side slots).
func SlotTemplate(vehicleType string) []string {
	slots := make([]string, 0, len(ParkingSides)*SlotsPerSide)
	for _, side := range ParkingSides {
		for i := 1; i <= SlotsPerSide; i++ {
			slots = append(slots, SlotNumber(vehicleType, side, i))
		}
	}
	return slots
}
