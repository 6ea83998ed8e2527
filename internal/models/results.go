package models

// ScenarioYearly is one row of the scenario-level output table: the
// generation-summed cumulative series plus the module end-of-life split.
// Areas are m², power is W, masses downstream are g. The JSON names are the
// output contract consumed by downstream aggregation and must stay stable.
type ScenarioYearly struct {
	Year                                int     `json:"year" db:"year"`
	CumulativeActiveArea                float64 `json:"Cumulative_Active_Area" db:"cumulative_active_area"`
	CumulativeAreaDisposedByFailure     float64 `json:"Cumulative_Area_disposedby_Failure" db:"cumulative_area_disposed_failure"`
	CumulativeAreaDisposedByDegradation float64 `json:"Cumulative_Area_disposedby_Degradation" db:"cumulative_area_disposed_degradation"`
	CumulativeAreaDisposed              float64 `json:"Cumulative_Area_disposed" db:"cumulative_area_disposed"`
	CumulativePowerW                    float64 `json:"Cumulative_Power_[W]" db:"cumulative_power_w"`
	EOLCollected                        float64 `json:"EoL_Collected" db:"eol_collected"`
	EOLNotCollected                     float64 `json:"EoL_NotCollected" db:"eol_not_collected"`
	EOLRecycled                         float64 `json:"EoL_Recycled" db:"eol_recycled"`
	EOLNotRecycledLandfilled            float64 `json:"EoL_NotRecycled_Landfilled" db:"eol_not_recycled_landfilled"`
}

// MaterialFlowYearly is one row of a material's output table: every derived
// mass flow of the end-of-life and manufacturing-scrap networks for one year.
type MaterialFlowYearly struct {
	Year int `json:"year" db:"year"`

	// End-of-life network.
	ModulesNotCollected         float64 `json:"mat_modules_NotCollected" db:"mat_modules_not_collected"`
	ModulesNotRecycled          float64 `json:"mat_modules_NotRecycled" db:"mat_modules_not_recycled"`
	EOLSentToRecycling          float64 `json:"mat_EOL_sento_Recycling" db:"mat_eol_sento_recycling"`
	EOLNotRecycledLandfilled    float64 `json:"mat_EOL_NotRecycled_Landfilled" db:"mat_eol_not_recycled_landfilled"`
	EOLRecycled                 float64 `json:"mat_EOL_Recycled" db:"mat_eol_recycled"`
	EOLRecycledLossesLandfilled float64 `json:"mat_EOL_Recycled_Losses_Landfilled" db:"mat_eol_recycled_losses_landfilled"`
	EOLRecycledIntoHQ           float64 `json:"mat_EoL_Recycled_into_HQ" db:"mat_eol_recycled_into_hq"`
	EOLRecycledIntoOQ           float64 `json:"mat_EoL_Recycled_into_OQ" db:"mat_eol_recycled_into_oq"`
	EOLRecycledHQIntoMFG        float64 `json:"mat_EoL_Recycled_HQ_into_MFG" db:"mat_eol_recycled_hq_into_mfg"`
	EOLRecycledHQIntoOU         float64 `json:"mat_EOL_Recycled_HQ_into_OU" db:"mat_eol_recycled_hq_into_ou"`

	// Manufacturing-scrap network.
	Manufactured                     float64 `json:"mat_Manufactured" db:"mat_manufactured"`
	ManufacturingInput               float64 `json:"mat_Manufacturing_Input" db:"mat_manufacturing_input"`
	MFGScrap                         float64 `json:"mat_MFG_Scrap" db:"mat_mfg_scrap"`
	MFGScrapSentToRecycling          float64 `json:"mat_MFG_Scrap_Sentto_Recycling" db:"mat_mfg_scrap_sentto_recycling"`
	MFGScrapLandfilled               float64 `json:"mat_MFG_Scrap_Landfilled" db:"mat_mfg_scrap_landfilled"`
	MFGScrapRecycled                 float64 `json:"mat_MFG_Scrap_Recycled" db:"mat_mfg_scrap_recycled"`
	MFGScrapRecycledLossesLandfilled float64 `json:"mat_MFG_Scrap_Recycled_Losses_Landfilled" db:"mat_mfg_scrap_recycled_losses_landfilled"`
	MFGRecycledIntoHQ                float64 `json:"mat_MFG_Recycled_into_HQ" db:"mat_mfg_recycled_into_hq"`
	MFGRecycledIntoOQ                float64 `json:"mat_MFG_Recycled_into_OQ" db:"mat_mfg_recycled_into_oq"`
	MFGRecycledHQIntoMFG             float64 `json:"mat_MFG_Recycled_HQ_into_MFG" db:"mat_mfg_recycled_hq_into_mfg"`
	MFGRecycledHQIntoOU              float64 `json:"mat_MFG_Recycled_HQ_into_OU" db:"mat_mfg_recycled_hq_into_ou"`

	// Roll-ups.
	VirginStock        float64 `json:"mat_Virgin_Stock" db:"mat_virgin_stock"`
	TotalEOLLandfilled float64 `json:"mat_Total_EoL_Landfilled" db:"mat_total_eol_landfilled"`
	TotalMFGLandfilled float64 `json:"mat_Total_MFG_Landfilled" db:"mat_total_mfg_landfilled"`
	TotalLandfilled    float64 `json:"mat_Total_Landfilled" db:"mat_total_landfilled"`
	TotalRecycledOU    float64 `json:"mat_Total_Recycled_OU" db:"mat_total_recycled_ou"`
}
