package report

import (
	"fmt"
	"html/template"
)

// ConfidenceLevel buckets a probability into the wording used on reports.
func ConfidenceLevel(confidence float32) string {
	switch {
	case confidence >= 0.9:
		return "Very High"
	case confidence >= 0.75:
		return "High"
	case confidence >= 0.6:
		return "Medium"
	default:
		return "Low"
	}
}

// Recommendation is the per-class guidance shown to staff and patients.
type Recommendation struct {
	Nurse   string
	Patient string
	Urgency string
	Note    string
}

var recommendations = []Recommendation{
	{
		Nurse:   "Result indicates no diabetic retinopathy. Routine follow-up recommended.",
		Patient: "Your eyes look healthy. Come back for another screening in 1 year.",
		Urgency: "routine",
	},
	{
		Nurse:   "Mild diabetic retinopathy detected. Recommend follow-up in 6-12 months.",
		Patient: "Early signs detected. See an eye doctor within 6-12 months to monitor your eyes.",
		Urgency: "monitor",
	},
	{
		Nurse:   "Moderate diabetic retinopathy. Refer to eye specialist within 3-6 months.",
		Patient: "Your eyes need attention. See an eye doctor within 3-6 months for treatment.",
		Urgency: "refer",
	},
	{
		Nurse:   "Severe diabetic retinopathy. Urgent referral to eye specialist within 1-2 months.",
		Patient: "Your eyes need urgent care. See an eye doctor within 1-2 months. Treatment can protect your vision.",
		Urgency: "urgent",
	},
	{
		Nurse:   "Proliferative diabetic retinopathy. Immediate referral to eye specialist (within 2 weeks).",
		Patient: "Your eyes need immediate attention. See an eye doctor within 2 weeks. Early treatment is very important.",
		Urgency: "immediate",
	},
}

// Recommend returns the guidance for a class, annotated by how confident the
// model was.
func Recommend(class int, confidence float32) Recommendation {
	if class < 0 || class >= len(recommendations) {
		class = 0
	}
	rec := recommendations[class]
	switch {
	case confidence < 0.7:
		rec.Note = "Low confidence - recommend manual review by specialist"
	case confidence < 0.85:
		rec.Note = "Medium confidence - consider additional screening"
	default:
		rec.Note = "High confidence result"
	}
	return rec
}

var explanations = []string{
	`<p>&#10003; <strong>Good news!</strong> Your eyes look healthy right now.</p>
<p>The screening tool looked at your eye photo. It checked the blood vessels and other
parts of your eye. Everything looks normal and healthy.</p>`,
	`<p>&#9888; The screening found some <strong>early changes</strong> in your eye.</p>
<p>This means there are small signs of diabetic eye disease. These are very early signs
and can be managed with good diabetes care.</p>`,
	`<p>&#9888; The screening found <strong>changes in your eye</strong> that need attention.</p>
<p>There are signs that diabetes is affecting the blood vessels in your eye. This does
NOT mean you will go blind. Treatment can prevent vision loss.</p>`,
	`<p>&#9888; The screening found <strong>serious changes</strong> in your eye.</p>
<p>There are significant signs that diabetes has damaged the blood vessels in your eye.
It's important to see an eye doctor soon. Treatment can protect your vision.</p>`,
	`<p>&#9888; The screening found <strong>advanced changes</strong> in your eye.</p>
<p>There are serious signs that diabetes has caused significant damage to your eye.
You need to see an eye doctor right away. Early treatment is very important to prevent vision loss.</p>`,
}

// Explanation builds the plain-language result section for a class.
func Explanation(class int, confidence float32) template.HTML {
	if class < 0 || class >= len(explanations) {
		class = 0
	}
	html := explanations[class]
	html += fmt.Sprintf("\n<p>The computer is %d%% confident about this result.</p>", int(confidence*100))
	if confidence < 0.7 {
		html += "\n<p><strong>Note:</strong> Because the computer is less sure about this result, a nurse or doctor should review it carefully.</p>"
	}
	return template.HTML(html)
}

var nextSteps = []string{
	`<ul>
<li><strong>Keep managing your diabetes</strong> with your regular doctor</li>
<li><strong>Come back for another screening in 1 year</strong></li>
<li><strong>Tell your doctor if your vision changes</strong> (blurry vision, spots, etc.)</li>
<li><strong>Control your blood sugar, blood pressure, and cholesterol</strong></li>
</ul>`,
	`<ul>
<li><strong>See an eye doctor within 6-12 months</strong> to check your eyes</li>
<li><strong>Keep your blood sugar under control</strong> - this is very important</li>
<li><strong>Monitor your vision</strong> - tell your doctor about any changes</li>
<li><strong>Don't worry</strong> - early detection means you can prevent problems</li>
</ul>`,
	`<ul>
<li><strong>See an eye doctor within 3-6 months</strong> for a detailed eye exam</li>
<li><strong>Work closely with your diabetes doctor</strong> to control blood sugar</li>
<li><strong>The eye doctor may recommend treatment</strong> to prevent vision loss</li>
<li><strong>Don't panic</strong> - treatment at this stage is very effective</li>
</ul>`,
	`<ul>
<li><strong>See an eye doctor within 1-2 months</strong> - this is important</li>
<li><strong>Treatment will likely be needed</strong> to protect your vision</li>
<li><strong>Keep your blood sugar as controlled as possible</strong></li>
<li><strong>Follow your eye doctor's advice closely</strong></li>
</ul>`,
	`<ul>
<li><strong>See an eye doctor within 2 weeks</strong> - this is urgent</li>
<li><strong>Treatment is needed soon</strong> to prevent serious vision loss</li>
<li><strong>Don't delay</strong> - early treatment makes a big difference</li>
<li><strong>Bring this report</strong> when you see the eye doctor</li>
</ul>`,
}

// NextSteps returns the action list for a class.
func NextSteps(class int) template.HTML {
	if class < 0 || class >= len(nextSteps) {
		class = 0
	}
	return template.HTML(nextSteps[class])
}
