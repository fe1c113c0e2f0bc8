package odid

// ExampleLocation returns a static airborne position near Greenwich, used
// when no location source is configured.
func ExampleLocation() Location {
	return Location{
		Status:          StatusAirborne,
		Direction:       InvalidDirection,
		SpeedHorizontal: 0,
		SpeedVertical:   0.35,
		Latitude:        51.4791,
		Longitude:       -0.0013,
		AltitudeBaro:    100,
		AltitudeGeo:     110,
		HeightType:      HeightRefOverGround,
		Height:          80,
		HorizAccuracy:   HorizAccuracyFromMeters(5.5),
		VertAccuracy:    VertAccuracyFromMeters(9.5),
		BaroAccuracy:    VertAccuracyFromMeters(0.5),
		SpeedAccuracy:   SpeedAccuracyFromMPS(0.5),
		TSAccuracy:      TimestampAccuracyFromSeconds(0.1),
		TimeStamp:       360.52,
	}
}

// unknownLocation has every field set to its "not available" value.
func unknownLocation() Location {
	return Location{
		Status:          StatusUndeclared,
		Direction:       InvalidDirection,
		SpeedHorizontal: InvalidSpeedHoriz,
		SpeedVertical:   InvalidSpeedVert,
		Latitude:        InvalidLat,
		Longitude:       InvalidLon,
		AltitudeBaro:    InvalidAltitude,
		AltitudeGeo:     InvalidAltitude,
		HeightType:      HeightRefOverGround,
		Height:          InvalidAltitude,
		TimeStamp:       InvalidTimestamp,
	}
}

// ExampleData returns a complete test identity. The location is unknown;
// the operator position sits next to ExampleLocation.
func ExampleData() UASData {
	ref := ExampleLocation()
	return UASData{
		BasicID: [BasicIDMaxCount]BasicID{
			{
				UAType: UATypeHelicopterOrMultirotor,
				IDType: IDTypeSerialNumber,
				UASID:  "112624150A90E3AE1EC0",
			},
			{
				UAType: UATypeHelicopterOrMultirotor,
				IDType: IDTypeSpecificSessionID,
				UASID:  "FD3454B778E565C24B70",
			},
		},
		Location: unknownLocation(),
		Auth: [AuthPageCount]Auth{
			{
				DataPage:      0,
				AuthType:      AuthUASIDSignature,
				LastPageIndex: 2,
				Length:        63,
				Timestamp:     28000000,
				AuthData:      "12345678901234567",
			},
			{
				DataPage: 1,
				AuthType: AuthUASIDSignature,
				AuthData: "12345678901234567890123",
			},
			{
				DataPage: 2,
				AuthType: AuthUASIDSignature,
				AuthData: "12345678901234567890123",
			},
		},
		SelfID: SelfID{
			DescType: DescTypeText,
			Desc:     "Drone ID test flight---",
		},
		System: System{
			OperatorLocationType: OperatorLocationTakeoff,
			ClassificationType:   ClassificationEU,
			OperatorLatitude:     ref.Latitude + 0.001,
			OperatorLongitude:    ref.Longitude - 0.001,
			AreaCount:            1,
			AreaRadius:           0,
			AreaCeiling:          InvalidAltitude,
			AreaFloor:            InvalidAltitude,
			CategoryEU:           CategoryEUOpen,
			ClassEU:              ClassEUClass1,
			OperatorAltitudeGeo:  20.5,
			Timestamp:            28056789,
		},
		OperatorID: OperatorID{
			OperatorIDType: OperatorIDTypeCAA,
			OperatorID:     "FIN87astrdge12k8",
		},
	}
}

// Messages encodes the single-message broadcast order: BasicID[0],
// BasicID[1], Location, Auth[0..2], SelfID, System, OperatorID. A message
// that fails to encode is reported through skip and left out.
func (d *UASData) Messages(skip func(typ uint8, err error)) []Message {
	out := make([]Message, 0, PackMaxMessages)
	add := func(typ uint8, m Message, err error) {
		if err != nil {
			if skip != nil {
				skip(typ, err)
			}
			return
		}
		out = append(out, m)
	}
	for _, b := range d.BasicID {
		m, err := EncodeBasicID(b)
		add(MessageTypeBasicID, m, err)
	}
	m, err := EncodeLocation(d.Location)
	add(MessageTypeLocation, m, err)
	for _, a := range d.Auth {
		m, err := EncodeAuth(a)
		add(MessageTypeAuth, m, err)
	}
	m, err = EncodeSelfID(d.SelfID)
	add(MessageTypeSelfID, m, err)
	m, err = EncodeSystem(d.System)
	add(MessageTypeSystem, m, err)
	m, err = EncodeOperatorID(d.OperatorID)
	add(MessageTypeOperatorID, m, err)
	return out
}
