package geo

import "github.com/idrees-mahmood/mcbmap/internal/models"

// centralLondonStations is the reference gazetteer for the area protest
// routes typically cross. Names match the station column of the footfall
// source files exactly; they are the join key, not display labels.
var centralLondonStations = []models.Station{
	{Name: "Westminster", Latitude: 51.5010, Longitude: -0.1254, Lines: []string{"Jubilee", "District", "Circle"}},
	{Name: "St. James's Park", Latitude: 51.4994, Longitude: -0.1335, Lines: []string{"District", "Circle"}},
	{Name: "Victoria", Latitude: 51.4965, Longitude: -0.1447, Lines: []string{"Victoria", "District", "Circle"}},
	{Name: "Embankment", Latitude: 51.5074, Longitude: -0.1223, Lines: []string{"Bakerloo", "Northern", "District", "Circle"}},
	{Name: "Charing Cross", Latitude: 51.5074, Longitude: -0.1278, Lines: []string{"Bakerloo", "Northern"}},
	{Name: "Leicester Square", Latitude: 51.5113, Longitude: -0.1281, Lines: []string{"Northern", "Piccadilly"}},
	{Name: "Piccadilly Circus", Latitude: 51.5098, Longitude: -0.1342, Lines: []string{"Bakerloo", "Piccadilly"}},
	{Name: "Oxford Circus", Latitude: 51.5152, Longitude: -0.1418, Lines: []string{"Central", "Victoria", "Bakerloo"}},
	{Name: "Tottenham Court Road", Latitude: 51.5165, Longitude: -0.1310, Lines: []string{"Central", "Northern", "Elizabeth"}},
	{Name: "Covent Garden", Latitude: 51.5129, Longitude: -0.1243, Lines: []string{"Piccadilly"}},
	{Name: "Holborn", Latitude: 51.5174, Longitude: -0.1201, Lines: []string{"Central", "Piccadilly"}},
	{Name: "Temple", Latitude: 51.5111, Longitude: -0.1141, Lines: []string{"District", "Circle"}},
	{Name: "Blackfriars", Latitude: 51.5120, Longitude: -0.1037, Lines: []string{"District", "Circle"}},
	{Name: "Green Park", Latitude: 51.5067, Longitude: -0.1428, Lines: []string{"Jubilee", "Victoria", "Piccadilly"}},
	{Name: "Hyde Park Corner", Latitude: 51.5027, Longitude: -0.1527, Lines: []string{"Piccadilly"}},
	{Name: "Marble Arch", Latitude: 51.5136, Longitude: -0.1586, Lines: []string{"Central"}},
	{Name: "Bond Street", Latitude: 51.5142, Longitude: -0.1494, Lines: []string{"Central", "Jubilee", "Elizabeth"}},
	{Name: "Knightsbridge", Latitude: 51.5015, Longitude: -0.1607, Lines: []string{"Piccadilly"}},
	{Name: "Waterloo", Latitude: 51.5036, Longitude: -0.1143, Lines: []string{"Jubilee", "Northern", "Bakerloo", "Waterloo & City"}},
	{Name: "Lambeth North", Latitude: 51.4991, Longitude: -0.1115, Lines: []string{"Bakerloo"}},
	{Name: "Southwark", Latitude: 51.5036, Longitude: -0.1052, Lines: []string{"Jubilee"}},
	{Name: "London Bridge", Latitude: 51.5052, Longitude: -0.0864, Lines: []string{"Jubilee", "Northern"}},
	{Name: "Bank", Latitude: 51.5133, Longitude: -0.0886, Lines: []string{"Central", "Northern", "Waterloo & City", "DLR"}},
	{Name: "Monument", Latitude: 51.5108, Longitude: -0.0863, Lines: []string{"District", "Circle"}},
	{Name: "St. Paul's", Latitude: 51.5146, Longitude: -0.0973, Lines: []string{"Central"}},
	{Name: "Chancery Lane", Latitude: 51.5185, Longitude: -0.1111, Lines: []string{"Central"}},
	{Name: "Russell Square", Latitude: 51.5230, Longitude: -0.1244, Lines: []string{"Piccadilly"}},
	{Name: "Euston", Latitude: 51.5282, Longitude: -0.1337, Lines: []string{"Victoria", "Northern"}},
	{Name: "King's Cross St. Pancras", Latitude: 51.5308, Longitude: -0.1238, Lines: []string{"Victoria", "Northern", "Piccadilly", "Circle", "Hammersmith & City", "Metropolitan"}},
	{Name: "Baker Street", Latitude: 51.5226, Longitude: -0.1571, Lines: []string{"Bakerloo", "Jubilee", "Circle", "Hammersmith & City", "Metropolitan"}},
	{Name: "Pimlico", Latitude: 51.4893, Longitude: -0.1334, Lines: []string{"Victoria"}},
	{Name: "Vauxhall", Latitude: 51.4861, Longitude: -0.1253, Lines: []string{"Victoria"}},
}
