package domain

// NumFeatures is the arity of every feature vector.
const NumFeatures = 5

// FeatureNames is the fixed column order of the training matrix.
var FeatureNames = [NumFeatures]string{"client_id", "open_epoch", "close_epoch", "is_maintenance", "incident_type_id"}

// ClassNames indexes the label values 0 and 1.
var ClassNames = [2]string{"not_critical", "critical"}

// TrainingExample is the projection of a classified ticket used for training.
// Epochs are Unix seconds (UTC).
type TrainingExample struct {
	ClientID       int64
	OpenEpoch      float64
	CloseEpoch     float64
	IsMaintenance  int
	IncidentTypeID int64
	IsCritical     int
}

// Features returns the example as a row in FeatureNames order.
func (e TrainingExample) Features() []float64 {
	return []float64{
		float64(e.ClientID),
		e.OpenEpoch,
		e.CloseEpoch,
		float64(e.IsMaintenance),
		float64(e.IncidentTypeID),
	}
}

// FeatureVector is a caller-supplied ticket to classify. Dates are YYYYMMDD
// integers (20230105 for 2023-01-05).
type FeatureVector struct {
	ClientID       int64
	OpenDate       int64
	CloseDate      int64
	IsMaintenance  int
	IncidentTypeID int64
}
