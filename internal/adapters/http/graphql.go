package http

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/core/met"
)

// buildSchema creates the GraphQL schema wired to our services.
// Domain structs resolve through their json tags, so field names are snake_case.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	correctionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Correction",
		Fields: graphql.Fields{
			"d_range_m":     &graphql.Field{Type: graphql.Float},
			"d_bearing_deg": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	windType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Wind",
		Fields: graphql.Fields{
			"direction_deg": &graphql.Field{Type: graphql.Float},
			"speed":         &graphql.Field{Type: graphql.Float},
			"met_scale":     &graphql.Field{Type: graphql.Float},
		},
	})

	solutionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FiringSolution",
		Fields: graphql.Fields{
			"origin":           &graphql.Field{Type: geoPointType},
			"azimuth_deg":      &graphql.Field{Type: graphql.Float},
			"left_offset_deg":  &graphql.Field{Type: graphql.Float},
			"right_offset_deg": &graphql.Field{Type: graphql.Float},
			"min_range_m":      &graphql.Field{Type: graphql.Float},
			"max_range_m":      &graphql.Field{Type: graphql.Float},
			"wind":             &graphql.Field{Type: windType},
			"label":            &graphql.Field{Type: graphql.String},
			"mode":             &graphql.Field{Type: graphql.String},
		},
	})

	polygonType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FanPolygon",
		Fields: graphql.Fields{
			"ring":              &graphql.Field{Type: graphql.NewList(geoPointType)},
			"correction":        &graphql.Field{Type: correctionType},
			"inner_radius_m":    &graphql.Field{Type: graphql.Float},
			"outer_radius_m":    &graphql.Field{Type: graphql.Float},
			"left_bearing_deg":  &graphql.Field{Type: graphql.Float},
			"right_bearing_deg": &graphql.Field{Type: graphql.Float},
			"arc_steps":         &graphql.Field{Type: graphql.Int},
			"radial_steps":      &graphql.Field{Type: graphql.Int},
			"label":             &graphql.Field{Type: graphql.String},
			"mode":              &graphql.Field{Type: graphql.String},
			"point_count": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					switch poly := p.Source.(type) {
					case domain.FanPolygon:
						return len(poly.Ring), nil
					case *domain.FanPolygon:
						return len(poly.Ring), nil
					}
					return nil, nil
				},
			},
		},
	})

	fanType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Fan",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"solution":   &graphql.Field{Type: solutionType},
			"polygon":    &graphql.Field{Type: polygonType},
			"bounds":     &graphql.Field{Type: boundsType},
			"reach_m":    &graphql.Field{Type: graphql.Float},
			"policy":     &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	fanInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "FanInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat":            &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon":            &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"azimuthDeg":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"leftOffsetDeg":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"rightOffsetDeg": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"minRangeM":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"maxRangeM":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"windDirection":  &graphql.InputObjectFieldConfig{Type: graphql.Float, DefaultValue: 0.0},
			"windSpeed":      &graphql.InputObjectFieldConfig{Type: graphql.Float, DefaultValue: 0.0},
			"metScale":       &graphql.InputObjectFieldConfig{Type: graphql.Float, DefaultValue: defaultMetScale},
			"label":          &graphql.InputObjectFieldConfig{Type: graphql.String, DefaultValue: ""},
			"mode":           &graphql.InputObjectFieldConfig{Type: graphql.String, DefaultValue: ""},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"fan": &graphql.Field{
				Type:        fanType,
				Description: "Get a computed fan by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Fans.Get(p.Context, p.Args["id"].(string))
				},
			},
			"fans": &graphql.Field{
				Type:        graphql.NewList(fanType),
				Description: "List computed fans, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					fans, _, err := deps.Fans.List(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					return fans, err
				},
			},
			"metCorrection": &graphql.Field{
				Type:        correctionType,
				Description: "Preview the MET correction for a firing azimuth",
				Args: graphql.FieldConfigArgument{
					"azimuth":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"windDirection": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"windSpeed":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"metScale":      &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: defaultMetScale},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					w := domain.Wind{
						DirectionDeg: p.Args["windDirection"].(float64),
						Speed:        p.Args["windSpeed"].(float64),
						MetScale:     p.Args["metScale"].(float64),
					}
					return deps.Fans.Corrections(p.Args["azimuth"].(float64), w), nil
				},
			},
			"relativeBearing": &graphql.Field{
				Type:        graphql.Float,
				Description: "Signed wind angle relative to the azimuth, in [-180, 180)",
				Args: graphql.FieldConfigArgument{
					"azimuth":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"windDirection": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return met.RelativeBearing(p.Args["windDirection"].(float64), p.Args["azimuth"].(float64)), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"computeFan": &graphql.Field{
				Type:        fanType,
				Description: "Compute and store a safety fan",
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(fanInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in, _ := p.Args["input"].(map[string]interface{})
					sol := solutionFromInput(in)
					// Same limits as POST /v1/fans.
					body, err := json.Marshal(sol)
					if err != nil {
						return nil, fmt.Errorf("fan input: %w", domain.ErrInvalidInput)
					}
					if err := validator(deps).ValidateBytes(body); err != nil {
						return nil, err
					}
					return deps.Fans.Compute(p.Context, sol)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func solutionFromInput(in map[string]interface{}) domain.FiringSolution {
	num := func(key string) float64 {
		switch v := in[key].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
		return 0
	}
	str := func(key string) string {
		s, _ := in[key].(string)
		return s
	}
	scale := defaultMetScale
	if _, ok := in["metScale"]; ok {
		scale = num("metScale")
	}
	return domain.FiringSolution{
		Origin:         domain.GeoPoint{Lat: num("lat"), Lon: num("lon")},
		AzimuthDeg:     num("azimuthDeg"),
		LeftOffsetDeg:  num("leftOffsetDeg"),
		RightOffsetDeg: num("rightOffsetDeg"),
		MinRangeM:      num("minRangeM"),
		MaxRangeM:      num("maxRangeM"),
		Wind: domain.Wind{
			DirectionDeg: num("windDirection"),
			Speed:        num("windSpeed"),
			MetScale:     scale,
		},
		Label: str("label"),
		Mode:  domain.TrajectoryMode(str("mode")),
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
